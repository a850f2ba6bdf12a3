package service

import (
	"strings"

	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"
)

// DeliveryMethodService 配送方式业务服务
type DeliveryMethodService struct {
	repo repository.DeliveryMethodRepository
}

// NewDeliveryMethodService 创建配送方式服务
func NewDeliveryMethodService(repo repository.DeliveryMethodRepository) *DeliveryMethodService {
	return &DeliveryMethodService{repo: repo}
}

// DeliveryMethodInput 创建/更新配送方式输入
type DeliveryMethodInput struct {
	Name      string
	Kind      string
	Cost      models.Money
	IsActive  bool
	SortOrder int
}

// List 配送方式列表
func (s *DeliveryMethodService) List(onlyActive bool) ([]models.DeliveryMethod, error) {
	return s.repo.List(onlyActive)
}

// Create 创建配送方式
func (s *DeliveryMethodService) Create(input DeliveryMethodInput) (*models.DeliveryMethod, error) {
	name := strings.TrimSpace(input.Name)
	kind := normalizeDeliveryKind(input.Kind)
	if name == "" || kind == "" {
		return nil, ErrValidation
	}

	method := models.DeliveryMethod{
		Name:      name,
		Kind:      kind,
		Cost:      input.Cost,
		IsActive:  input.IsActive,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.Create(&method); err != nil {
		return nil, err
	}
	return &method, nil
}

// Update 更新配送方式
func (s *DeliveryMethodService) Update(id uint, input DeliveryMethodInput) (*models.DeliveryMethod, error) {
	method, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(input.Name)
	kind := normalizeDeliveryKind(input.Kind)
	if name == "" || kind == "" {
		return nil, ErrValidation
	}

	method.Name = name
	method.Kind = kind
	method.Cost = input.Cost
	method.IsActive = input.IsActive
	method.SortOrder = input.SortOrder

	if err := s.repo.Update(method); err != nil {
		return nil, err
	}
	return method, nil
}

// Delete 删除配送方式
func (s *DeliveryMethodService) Delete(id uint) error {
	method, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if method == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func normalizeDeliveryKind(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case constants.DeliveryKindPickup:
		return constants.DeliveryKindPickup
	case constants.DeliveryKindCourier:
		return constants.DeliveryKindCourier
	default:
		return ""
	}
}
