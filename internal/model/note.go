package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// KeyTopic is one structured topic of a generated note, in the order the
// AI boundary produced it.
type KeyTopic struct {
	Topic  string   `json:"topic"`
	Points []string `json:"points"`
}

// KeyTopics is stored as a JSON column so topic and point ordering survives
// round-trips exactly.
type KeyTopics []KeyTopic

// Value implements driver.Valuer.
func (k KeyTopics) Value() (driver.Value, error) {
	if k == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(k)
}

// Scan implements sql.Scanner.
func (k *KeyTopics) Scan(value interface{}) error {
	if value == nil {
		*k = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported key_topics column type %T", value)
	}
	return json.Unmarshal(data, k)
}

// Note is one saved recording session: generated notes plus the source audio
// stored inline on the same row. CreatedAt is epoch milliseconds, assigned on
// first save only; zero means the note has not been saved yet.
type Note struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"not null;index:idx_notes_user_id"`
	Title         string    `json:"title" gorm:"size:512;not null"`
	Summary       string    `json:"summary" gorm:"type:text"`
	KeyTopics     KeyTopics `json:"key_topics" gorm:"type:json"`
	Transcription string    `json:"transcription" gorm:"type:longtext"`
	CreatedAt     int64     `json:"created_at"`
	Audio         []byte    `json:"-" gorm:"type:longblob"`
	AudioMIME     string    `json:"audio_mime,omitempty" gorm:"size:64"`
}

// WithoutAudio returns a copy of the note with the audio blob stripped, for
// list responses and the note half of a note+audio split.
func (n Note) WithoutAudio() Note {
	n.Audio = nil
	return n
}
