package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const DefaultLayout = "default"

// Style defaults applied whenever a value is absent or blank.
const (
	DefaultTitleColor      = "#000000"
	DefaultContentColor    = "#333333"
	DefaultBackgroundColor = "#ffffff"
	DefaultFontSize        = "16px"
)

type Template struct {
	ID        string         `json:"id" db:"id"`
	UserID    string         `json:"userId" db:"user_id"`
	Name      string         `json:"name" db:"name"`
	Config    TemplateConfig `json:"config" db:"config"`
	Layout    string         `json:"layout" db:"layout"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

type TemplateConfig struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	ImageURL string         `json:"imageUrl"`
	Footer   string         `json:"footer"`
	Styles   TemplateStyles `json:"styles"`
}

type TemplateStyles struct {
	TitleColor      string `json:"titleColor"`
	ContentColor    string `json:"contentColor"`
	BackgroundColor string `json:"backgroundColor"`
	FontSize        string `json:"fontSize"`
}

func (c TemplateConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *TemplateConfig) Scan(value interface{}) error {
	if value == nil {
		*c = TemplateConfig{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, c)
}

// TemplateRequest is the body of both create and update. Config is a pointer
// so a missing object is distinguishable from an empty one.
type TemplateRequest struct {
	Name   string          `json:"name" example:"Promo"`
	Config *TemplateConfig `json:"config"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ImageUploadResponse repeats the URL as imageUrl for older editor builds.
type ImageUploadResponse struct {
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl"`
}

type LayoutResponse struct {
	Layout string `json:"layout"`
}
