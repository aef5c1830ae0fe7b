package models

// CommandLog records one handled chat command.
type CommandLog struct {
	ID         string `gorm:"primaryKey" json:"id"`
	Timestamp  int64  `gorm:"index" json:"timestamp"`
	RequestID  string `json:"request_id"`
	ChatID     int64  `gorm:"index" json:"chat_id"`
	Command    string `gorm:"index" json:"command"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"duration_ms"`
}

// CommandStats aggregates command outcomes.
type CommandStats struct {
	Total     int64            `json:"total"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ByCommand map[string]int64 `json:"by_command"`
}
