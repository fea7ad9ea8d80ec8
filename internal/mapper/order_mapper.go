package mapper

import (
	"encoding/json"

	"stockpoints-be/internal/entity"
	"stockpoints-be/internal/model"

	"gorm.io/datatypes"
)

type OrderMapper struct{}

func NewOrderMapper() *OrderMapper {
	return &OrderMapper{}
}

func (m *OrderMapper) ToEntity(o *model.Order) *entity.Order {
	if o == nil {
		return nil
	}
	var info entity.FileInfo
	_ = json.Unmarshal(o.FileInfo, &info)
	// Site and ExternalId are also kept as plain columns for lookups;
	// the columns win if the JSON blob ever disagrees.
	info.Site = o.Site
	info.ExternalId = o.ExternalId

	return &entity.Order{
		Id:            o.Id,
		UserId:        o.UserId,
		TaskId:        o.TaskId,
		FileInfo:      info,
		ChargedPoints: o.ChargedPoints,
		Status:        entity.OrderStatus(o.Status),
		DownloadURL:   o.DownloadURL,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (m *OrderMapper) ToModel(o *entity.Order) (*model.Order, error) {
	if o == nil {
		return nil, nil
	}
	raw, err := json.Marshal(o.FileInfo)
	if err != nil {
		return nil, err
	}
	return &model.Order{
		Id:            o.Id,
		UserId:        o.UserId,
		TaskId:        o.TaskId,
		Site:          o.FileInfo.Site,
		ExternalId:    o.FileInfo.ExternalId,
		FileInfo:      datatypes.JSON(raw),
		ChargedPoints: o.ChargedPoints,
		Status:        string(o.Status),
		DownloadURL:   o.DownloadURL,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}
