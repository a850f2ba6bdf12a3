package service

import (
	"strings"

	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"
)

// PaymentMethodService 收款方式业务服务
type PaymentMethodService struct {
	repo repository.PaymentMethodRepository
}

// NewPaymentMethodService 创建收款方式服务
func NewPaymentMethodService(repo repository.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{repo: repo}
}

// PaymentMethodInput 创建/更新收款方式输入
type PaymentMethodInput struct {
	Name          string
	AccountName   string
	AccountNumber string
	IsActive      bool
	SortOrder     int
}

// List 收款方式列表
func (s *PaymentMethodService) List(onlyActive bool) ([]models.PaymentMethod, error) {
	return s.repo.List(onlyActive)
}

// Create 创建收款方式
func (s *PaymentMethodService) Create(input PaymentMethodInput) (*models.PaymentMethod, error) {
	name := strings.TrimSpace(input.Name)
	accountName := strings.TrimSpace(input.AccountName)
	accountNumber := strings.TrimSpace(input.AccountNumber)
	if name == "" || accountName == "" || accountNumber == "" {
		return nil, ErrValidation
	}

	method := models.PaymentMethod{
		Name:          name,
		AccountName:   accountName,
		AccountNumber: accountNumber,
		IsActive:      input.IsActive,
		SortOrder:     input.SortOrder,
	}
	if err := s.repo.Create(&method); err != nil {
		return nil, err
	}
	return &method, nil
}

// Update 更新收款方式
func (s *PaymentMethodService) Update(id uint, input PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrNotFound
	}

	name := strings.TrimSpace(input.Name)
	accountName := strings.TrimSpace(input.AccountName)
	accountNumber := strings.TrimSpace(input.AccountNumber)
	if name == "" || accountName == "" || accountNumber == "" {
		return nil, ErrValidation
	}

	method.Name = name
	method.AccountName = accountName
	method.AccountNumber = accountNumber
	method.IsActive = input.IsActive
	method.SortOrder = input.SortOrder

	if err := s.repo.Update(method); err != nil {
		return nil, err
	}
	return method, nil
}

// Delete 删除收款方式
func (s *PaymentMethodService) Delete(id uint) error {
	method, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if method == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}
