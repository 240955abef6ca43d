package model

// Member is the profile data the survey reads from the account store
type Member struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Gender string `json:"gender,omitempty" bson:"gender,omitempty"` // recorded gender, may be empty
}
