package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-api/internal/db/store"
)

// Messages returned to clients.
const (
	MsgUserNotFound      = "user not found"
	MsgProfileNotFound   = "profile not found"
	MsgNoUsersFound      = "no user(s) found"
	MsgUserUpdated       = "user updated successfully"
	MsgEmailTaken        = "this email is already registered on this platform"
	MsgNothingToUpdate   = "missing or invalid fields to update"
	MsgInvalidLink       = "invalid or expired token"
	MsgEmailMismatch     = "email mismatch. please use the link sent to your email"
	MsgBadCredentials    = "unable to verify user. invalid verification credentials"
	MsgEmailVerified     = "email verified successfully"
	MsgAlreadyVerified   = "email has already been verified"
	MsgPasswordUpdated   = "password updated successfully"
	MsgEmailNotFound     = "email not registered"
	MsgVerifyFirst       = "can only send verification mails to unverified emails. please verify your email"
	MsgMailSent          = "mail sent successfully"
	MsgImageSaved        = "image saved successfully"
	MsgImageRemoved      = "image removed successfully"
	MsgNoImage           = "user has no image"
	MsgDeleteMissing     = "the user you're trying to delete does not exist"
	MsgUserDeleted       = "user deleted successfully"
	MsgNotYourAccount    = "you can only modify your own account"
	MsgStorageDisabled   = "image storage is not configured"
	MsgMailerUnavailable = "unable to send mail. please try again later"
)

// Profile is a user without secrets.
type Profile struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	Firstname       string     `json:"firstname"`
	Middlename      string     `json:"middlename"`
	Lastname        string     `json:"lastname"`
	Gender          string     `json:"gender"`
	Dob             *time.Time `json:"dob,omitempty"`
	Nationality     string     `json:"nationality"`
	Language        string     `json:"language"`
	Occupation      string     `json:"occupation"`
	Score           int64      `json:"score"`
	Rank            int64      `json:"rank"`
	Photo           string     `json:"photo"`
	Role            string     `json:"role"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	HasPassword     bool       `json:"hasPassword"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toProfile(u store.User) Profile {
	return Profile{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		Firstname:       u.Firstname,
		Middlename:      u.Middlename,
		Lastname:        u.Lastname,
		Gender:          u.Gender,
		Dob:             u.Dob,
		Nationality:     u.Nationality,
		Language:        u.Language,
		Occupation:      u.Occupation,
		Score:           u.Score,
		Rank:            int64(u.Rank),
		Photo:           u.Photo,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		HasPassword:     u.PasswordHash != nil && *u.PasswordHash != "",
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UpdateInput is a partial profile change. Nil fields are left untouched.
type UpdateInput struct {
	Email       *string
	Username    *string
	Firstname   *string
	Middlename  *string
	Lastname    *string
	Gender      *string
	Dob         *time.Time
	Nationality *string
	Language    *string
	Occupation  *string
}

func (in UpdateInput) empty() bool {
	return in.Email == nil && in.Username == nil && in.Firstname == nil && in.Middlename == nil &&
		in.Lastname == nil && in.Gender == nil && in.Dob == nil && in.Nationality == nil &&
		in.Language == nil && in.Occupation == nil
}

// LinkInput carries the query of a secure link.
type LinkInput struct {
	Email string
	Token string
}

type updateRequest struct {
	ID          string     `json:"id" validate:"omitempty,uuid"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	Username    *string    `json:"username" validate:"omitempty,max=64"`
	Firstname   *string    `json:"firstname" validate:"omitempty,max=64"`
	Middlename  *string    `json:"middlename" validate:"omitempty,max=64"`
	Lastname    *string    `json:"lastname" validate:"omitempty,max=64"`
	Gender      *string    `json:"gender" validate:"omitempty,oneof=male female"`
	Dob         *time.Time `json:"dob"`
	Nationality *string    `json:"nationality" validate:"omitempty,max=64"`
	Language    *string    `json:"language" validate:"omitempty,max=64"`
	Occupation  *string    `json:"occupation" validate:"omitempty,max=128"`
}

type getQuery struct {
	Type   string `query:"type" validate:"required,oneof=id all"`
	ID     string `query:"id" validate:"required_if=Type id,omitempty,uuid"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type deleteQuery struct {
	Type string `query:"type" validate:"required,eq=id"`
	ID   string `query:"id" validate:"required,uuid"`
}

type linkQuery struct {
	Email string `query:"email" validate:"required,email"`
	Token string `query:"token" validate:"required"`
}

type resetRequest struct {
	Password string `json:"password" validate:"required,min=4"`
}

type sendMailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	MailType string `json:"mailtype" validate:"required,oneof=verify resetpassword"`
}
