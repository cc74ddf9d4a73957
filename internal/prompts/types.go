package prompts

import "fmt"

// Key identifies one of the user-customizable prompts
type Key string

const (
	Categorization Key = "categorization"
	ActionItems    Key = "action-items"
	AutoReply      Key = "auto-reply"
	QuickReply     Key = "quick-reply"
)

// Keys lists every customizable prompt in display order
var Keys = []Key{Categorization, ActionItems, AutoReply, QuickReply}

var defaults = map[Key]string{
	Categorization: "Analyze the following email and assign it exactly one category from this list: [Work, Personal, Newsletter, Finance, Travel, Urgent, Other]. Return only the category name.",
	ActionItems: `Analyze the following email and extract any tasks, appointments, or deadlines that should be set as reminders.
Return the result as a JSON array of objects with "text" (description of the task) and "date" (ISO date string if a specific date/time is mentioned, otherwise null).
If no reminders are found, return an empty array [].
Do not include any markdown formatting or explanation, just the raw JSON string.`,
	AutoReply: "Draft a professional and polite reply to this email. The tone should be helpful and concise.",
	QuickReply: `Read the following email content and generate exactly 3 professional, complete, and distinct quick reply options.
One option should be positive (agreeing/accepting), one should be neutral/inquiry-based, and one should be negative (declining/disagreeing) but polite.
They should be full sentences or short paragraphs, not just one-word answers.
Return ONLY a JSON array of strings.`,
}

// Default returns the built-in text for key
func Default(key Key) string {
	return defaults[key]
}

// Valid reports whether key names a customizable prompt
func (k Key) Valid() bool {
	_, ok := defaults[k]
	return ok
}

// ParseKey validates a raw key
func ParseKey(raw string) (Key, error) {
	k := Key(raw)
	if !k.Valid() {
		return "", fmt.Errorf("unknown prompt key %q", raw)
	}
	return k, nil
}

// Prompt is a prompt as shown to the user
type Prompt struct {
	Key      Key    `json:"key"`
	Text     string `json:"text"`
	IsCustom bool   `json:"is_custom"`
}
