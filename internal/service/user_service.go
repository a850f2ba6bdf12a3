package service

import (
	"context"
	"strings"

	"github.com/toko-next/internal/cache"
	"github.com/toko-next/internal/config"
	"github.com/toko-next/internal/constants"
	"github.com/toko-next/internal/models"
	"github.com/toko-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService 管理端用户管理服务
type UserService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserService 创建用户管理服务
func NewUserService(cfg *config.Config, userRepo repository.UserRepository) *UserService {
	return &UserService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// CreateUserInput 创建用户输入
type CreateUserInput struct {
	Username string
	Password string
	Role     string
	Type     string
	Name     string
	Email    string
	Phone    string
	Address  string
	CSCode   string
}

// UpdateUserInput 更新用户输入（密码单独走重置接口）
type UpdateUserInput struct {
	Type    string
	Name    string
	Email   string
	Phone   string
	Address string
	CSCode  string
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// Get 获取用户
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// Create 创建用户
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrValidation
	}
	role := normalizeRole(input.Role)
	userType := normalizeUserType(input.Type)
	if role == "" || userType == "" {
		return nil, ErrValidation
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	count, err := s.userRepo.CountByUsername(username, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
		Type:         userType,
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		CSCode:       strings.TrimSpace(input.CSCode),
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update 更新用户资料与客户等级
func (s *UserService) Update(id uint, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	userType := normalizeUserType(input.Type)
	if userType == "" {
		return nil, ErrValidation
	}

	user.Type = userType
	user.Name = strings.TrimSpace(input.Name)
	user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	user.Phone = strings.TrimSpace(input.Phone)
	user.Address = strings.TrimSpace(input.Address)
	user.CSCode = strings.TrimSpace(input.CSCode)

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

// ResetPassword 管理员重置用户密码，重置后原 Token 全部失效
func (s *UserService) ResetPassword(id uint, newPassword string) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	user.TokenVersion++
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateStatus 启用/禁用用户
func (s *UserService) UpdateStatus(id uint, status string) error {
	normalized := strings.ToLower(strings.TrimSpace(status))
	if normalized != constants.UserStatusActive && normalized != constants.UserStatusDisabled {
		return ErrValidation
	}

	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := s.userRepo.UpdateStatus(id, normalized); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), id)
	return nil
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case constants.RoleAdmin:
		return constants.RoleAdmin
	case constants.RoleUser, "":
		return constants.RoleUser
	default:
		return ""
	}
}

func normalizeUserType(userType string) string {
	switch strings.ToLower(strings.TrimSpace(userType)) {
	case constants.UserTypeVIP:
		return constants.UserTypeVIP
	case constants.UserTypeRegular, "":
		return constants.UserTypeRegular
	default:
		return ""
	}
}
