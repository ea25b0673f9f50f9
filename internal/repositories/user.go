package repositories

import (
	"errors"
	"strings"

	"datasub/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations.
// Wallet balances are never written through this interface; all balance
// mutation goes through the ledger service's atomic primitives.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateLastLogin(userID uint, ip string) error
	IncrementTokenVersion(userID uint) error
	GetTokenVersion(userID uint) (int, error)
	SetBanned(userID uint, banned bool, reason string) error
	List(search string, offset, limit int) ([]models.User, int64, error)
	Count() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Email and phone both carry unique indexes; pick the message
			// by which value collided.
			var existing models.User
			if r.db.Where("email = ?", user.Email).First(&existing).Error == nil {
				return ErrEmailTaken
			}
			return ErrPhoneTaken
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translateError(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, translateError(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdateLastLogin(userID uint, ip string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"last_login_ip": ip,
		}).Error
}

func (r *userRepository) IncrementTokenVersion(userID uint) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("token_version", gorm.Expr("token_version + 1")).Error
}

func (r *userRepository) GetTokenVersion(userID uint) (int, error) {
	var user models.User
	if err := r.db.Select("token_version").First(&user, userID).Error; err != nil {
		return 0, translateError(err, ErrUserNotFound)
	}
	return user.TokenVersion, nil
}

func (r *userRepository) SetBanned(userID uint, banned bool, reason string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"banned": banned, "ban_reason": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(search string, offset, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR phone LIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *userRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&models.User{}).Count(&total).Error
	return total, err
}
