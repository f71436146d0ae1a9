package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message is one turn of the conversation being answered.

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// PartKind tags one element of mixed message content.
type PartKind string

const (
	PartKindText  PartKind = "text"
	PartKindImage PartKind = "image"
	PartKindFile  PartKind = "file"
)

// Part is one element of mixed content: a text run, an inline image
// (base64 bytes), or a reference to an uploaded file.
type Part struct {
	Kind     PartKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Data     string   `json:"data,omitempty"`
	MimeType string   `json:"mime_type,omitempty"`
	URI      string   `json:"uri,omitempty"`
}

// Content is either a plain string or an ordered sequence of parts.
// Exactly one of the two forms is populated; Parts == nil means plain text.
type Content struct {
	Text  string
	Parts []Part
}

func TextContent(s string) Content {
	return Content{Text: s}
}

func PartsContent(parts ...Part) Content {
	return Content{Parts: parts}
}

// PlainText returns the string form, or the first text part of mixed content.
func (c Content) PlainText() string {
	if c.Parts == nil {
		return c.Text
	}
	for _, p := range c.Parts {
		if p.Kind == PartKindText {
			return p.Text
		}
	}
	return ""
}

func (c Content) IsEmpty() bool {
	return strings.TrimSpace(c.PlainText()) == ""
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts == nil {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Parts)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = Content{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Content{Text: s}
		return nil
	case '[':
		var parts []Part
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*c = Content{Parts: parts}
		return nil
	default:
		return fmt.Errorf("message content must be a string or a part array")
	}
}
