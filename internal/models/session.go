package models

import (
	"time"

	"github.com/uptrace/bun"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// GameSessionSchemaVersion tags every persisted session document so storage
// format changes stay explicit.
const GameSessionSchemaVersion = 1

// AnswerRecord is an append-only snapshot of one answered question. The
// question is copied in full so the record survives question-bank edits.
type AnswerRecord struct {
	bun.BaseModel `bun:"table:answer_record"`
	SessionID     string    `bun:"session_id,pk" json:"session_id" msgpack:"session_id"`
	Index         int       `bun:"index,pk" json:"index" msgpack:"index"`
	Question      Question  `bun:"question,type:jsonb" json:"question" msgpack:"question"`
	UserAnswer    string    `bun:"user_answer" json:"user_answer" msgpack:"user_answer"`
	Correct       bool      `bun:"correct" json:"correct" msgpack:"correct"`
	Timestamp     time.Time `bun:"timestamp" json:"timestamp" msgpack:"timestamp"`
}

// GameSession is the mutable aggregate of one quiz attempt. The question set
// is fixed at creation; the cursor, score and answer list advance with each
// submission. The live document is held in the session store and archived to
// postgres once completed.
type GameSession struct {
	bun.BaseModel        `bun:"table:game_session"`
	SessionID            string         `bun:"session_id,pk" json:"session_id" msgpack:"session_id"`
	UserID               string         `bun:"user_id" json:"user_id" msgpack:"user_id"`
	NumQuestions         int            `bun:"num_questions" json:"num_questions" msgpack:"num_questions"`
	CurrentQuestionIndex int            `bun:"current_question_index" json:"current_question_index" msgpack:"current_question_index"`
	Score                int            `bun:"score" json:"score" msgpack:"score"`
	Status               SessionStatus  `bun:"status" json:"status" msgpack:"status"`
	StartTime            time.Time      `bun:"start_time" json:"start_time" msgpack:"start_time"`
	EndTime              *time.Time     `bun:"end_time" json:"end_time" msgpack:"end_time"`
	SchemaVersion        int            `bun:"schema_version" json:"schema_version" msgpack:"schema_version"`
	Questions            []Question     `bun:"-" json:"questions" msgpack:"questions"`
	Answers              []AnswerRecord `bun:"-" json:"answers" msgpack:"answers"`
}

func (s *GameSession) Active() bool {
	return s != nil && s.Status == SessionActive
}

// GameResponse is the outcome shape returned to the dispatcher for every
// game command and answer submission.
type GameResponse struct {
	Response          string   `json:"response"`
	SessionID         string   `json:"session_id,omitempty"`
	Score             int      `json:"score"`
	AvailableCommands []string `json:"available_commands"`
}
