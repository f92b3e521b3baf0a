package models

// Reward is the per-user point ledger row, created on first award.
type Reward struct {
	UserID string `json:"user_id" bson:"user_id" gorm:"primaryKey;size:36"`
	Points int64  `json:"points" bson:"points" gorm:"not null;default:0;check:chk_rewards_points,points >= 0"`

	User *User `json:"-" bson:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type RedeemRequest struct {
	Points int64 `json:"points" form:"points" validate:"required,gt=0"`
}
