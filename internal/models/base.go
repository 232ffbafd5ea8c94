package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Base struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
}

func NewBase() Base {
	return Base{
		ID: primitive.NewObjectID(),
	}
}
