package pushsubscription

import "time"

// Subscription is a browser push endpoint registered by a user.
type Subscription struct {
	ID        string    `yaml:"id" bson:"_id" json:"id"`
	UserID    string    `yaml:"user_id" bson:"userId" json:"userId"`
	Endpoint  string    `yaml:"endpoint" bson:"endpoint" json:"endpoint"`
	P256dhKey string    `yaml:"p256dh_key" bson:"p256dhKey" json:"p256dhKey"`
	AuthKey   string    `yaml:"auth_key" bson:"authKey" json:"authKey"`
	CreatedAt time.Time `yaml:"created_at" bson:"createdAt" json:"createdAt"`
}
