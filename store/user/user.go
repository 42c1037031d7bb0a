package user

import (
	"context"

	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type userStore struct {
	db *db.DB
}

// New new user store
func New(db *db.DB) core.IUserStore {
	return &userStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.User{})
		if err := tx.AutoMigrate(core.User{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *userStore) Save(ctx context.Context, tx *db.DB, user *core.User) error {
	return tx.Update().Where("user_id=?", user.UserID).FirstOrCreate(user).Error
}

func (s *userStore) Find(ctx context.Context, userID string) (*core.User, error) {
	var user core.User
	if err := s.db.View().Where("user_id=?", userID).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.User{UserID: userID}, nil
		}
		return nil, err
	}

	return &user, nil
}

func (s *userStore) All(ctx context.Context) ([]*core.User, error) {
	var users []*core.User
	if err := s.db.View().Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userStore) Update(ctx context.Context, tx *db.DB, user *core.User) error {
	version := user.Version
	user.Version++
	// map update so emptied bitmasks are written back, not skipped as blank
	updates := map[string]interface{}{
		"collateral_assets": user.CollateralAssets,
		"borrowed_assets":   user.BorrowedAssets,
		"version":           user.Version,
	}
	if err := tx.Update().Model(core.User{}).Where("user_id=? and version=?", user.UserID, version).Updates(updates).Error; err != nil {
		return err
	}

	return nil
}
