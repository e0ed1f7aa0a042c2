package styletemplate

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// PromptList is a JSONB column holding one style prompt per visual style.
type PromptList []string

// Value implements driver.Valuer for JSONB storage
func (p PromptList) Value() (driver.Value, error) {
	return sonic.Marshal(p)
}

// Scan implements sql.Scanner for JSONB retrieval
func (p *PromptList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return sonic.Unmarshal(v, p)
	case string:
		return sonic.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("unsupported type for PromptList: %T", src)
	}
}

// StyleTemplate is a reusable set of visual style prompts used to render
// style preview images for a storyboard.
type StyleTemplate struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Prompts     PromptList `json:"prompts" db:"prompts"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateStyleTemplateRequest captures payload for creating a style template
type CreateStyleTemplateRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Prompts     PromptList `json:"prompts" validate:"required,min=1"`
}

// UpdateStyleTemplateRequest captures payload for updating a style template
type UpdateStyleTemplateRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Prompts     PromptList `json:"prompts,omitempty"`
}
