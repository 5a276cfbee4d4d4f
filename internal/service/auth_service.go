package service

import (
	"errors"

	"flagdojo_backend/internal/config"
	"flagdojo_backend/internal/model"
	"flagdojo_backend/internal/repository"
	"flagdojo_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

func (s *AuthService) Register(username, password string) (*model.User, error) {
	_, err := s.UserRepo.FindByUsername(username)
	if err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashed),
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

// SeedAdmin 按配置创建初始管理员账号，已存在则不动
func (s *AuthService) SeedAdmin() (*model.User, bool, error) {
	existing, err := s.UserRepo.FindByUsername(s.Cfg.Admin.Username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(s.Cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	admin := &model.User{
		Username:     s.Cfg.Admin.Username,
		PasswordHash: string(hashed),
		IsAdmin:      true,
	}
	if err := s.UserRepo.Create(admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
