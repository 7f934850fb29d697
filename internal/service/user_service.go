package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/model"
	"Postline/internal/pkg/redis"
	"Postline/internal/pkg/security"
	"Postline/internal/repository"
	"context"
	"time"

	"github.com/jinzhu/copier"
)

type UserService interface {
	Register(ctx context.Context, regDTO *dto.RegisterDTO) error
	Login(ctx context.Context, credDTO *dto.CredentialDTO) (string, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, userID uint64) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, profileDTO *dto.UpdateProfileDTO) error
	ChangePassword(ctx context.Context, userID uint64, pwdDTO *dto.ChangePasswordDTO) error
}

type userServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) error {
	existing, err := s.userRepo.GetUserByUsername(ctx, regDTO.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserUsernameExist
	}
	existing, err = s.userRepo.GetUserByEmail(ctx, regDTO.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserEmailExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Username: regDTO.Username,
		Email:    regDTO.Email,
		Password: passwordHash,
		Nickname: regDTO.Nickname,
	}
	return s.userRepo.CreateUser(ctx, user)
}

func (s *userServiceImpl) Login(ctx context.Context, credDTO *dto.CredentialDTO) (string, error) {
	var user *model.User
	var err error
	switch {
	case credDTO.Username != "":
		user, err = s.userRepo.GetUserByUsername(ctx, credDTO.Username)
	case credDTO.Email != "":
		user, err = s.userRepo.GetUserByEmail(ctx, credDTO.Email)
	default:
		return "", ErrMissingLoginCredentials
	}
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if err = security.CheckPasswordHash(credDTO.Password, user.Password); err != nil {
		return "", ErrPasswordIncorrect
	}

	return security.GenerateToken(user.ID, []string{user.Role})
}

// Logout 把 token 签名加入失效名单，有效期与 token 本身一致
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return err
	}
	return redis.SetWithExpiration(ctx, signature, true, security.JWTExpirationTime)
}

func (s *userServiceImpl) GetUserInfo(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	userDTO := &dto.UserDTO{}
	if err = copier.Copy(userDTO, user); err != nil {
		return nil, err
	}
	userDTO.CreatedAt = user.CreatedAt.UTC().Format(time.RFC3339)
	return userDTO, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uint64, profileDTO *dto.UpdateProfileDTO) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if profileDTO.Nickname != "" {
		user.Nickname = profileDTO.Nickname
	}
	if profileDTO.Avatar != "" {
		user.Avatar = profileDTO.Avatar
	}
	return s.userRepo.UpdateUser(ctx, user)
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, userID uint64, pwdDTO *dto.ChangePasswordDTO) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err = security.CheckPasswordHash(pwdDTO.OldPassword, user.Password); err != nil {
		return ErrPasswordIncorrect
	}

	passwordHash, err := security.HashPassword(pwdDTO.NewPassword)
	if err != nil {
		return err
	}
	user.Password = passwordHash
	return s.userRepo.UpdateUser(ctx, user)
}
