package models

import "go.mongodb.org/mongo-driver/v2/bson"

type User struct {
	ID          bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	FirstName   string        `json:"first_name" bson:"first_name"`
	LastName    string        `json:"last_name" bson:"last_name"`
	Location    string        `json:"location" bson:"location"`
	Description string        `json:"description" bson:"description"`
	Occupation  string        `json:"occupation" bson:"occupation"`
	LoginName   string        `json:"login_name" bson:"login_name"`
}
