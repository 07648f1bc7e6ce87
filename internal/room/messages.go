package room

import (
	"encoding/json"
	"time"

	"github.com/Seednode/tandem/internal/tasks"
)

// Role is one of the two seats in a room.
type Role string

const (
	First  Role = "first"
	Second Role = "second"
)

func (r Role) Other() Role {
	if r == First {
		return Second
	}
	return First
}

func (r Role) valid() bool {
	return r == First || r == Second
}

// State is the lifecycle state of a room.
type State string

const (
	Empty     State = "empty"
	Waiting   State = "waiting"
	Selecting State = "selecting"
	Playing   State = "playing"
	Finished  State = "finished"
)

// Inbound command types.
const (
	CmdCreateRoom    = "create_room"
	CmdJoinRoom      = "join_room"
	CmdSelectGame    = "select_game"
	CmdPlayerReady   = "player_ready"
	CmdStartGame     = "start_game"
	CmdSubmitAnswer  = "submit_answer"
	CmdUpdateScore   = "update_score"
	CmdNextTask      = "next_task"
	CmdAddWord       = "add_word"
	CmdFinishGame    = "finish_game"
	CmdReturnToGames = "return_to_games"

	CmdAdminLogin      = "admin_login"
	CmdAdminGetGames   = "admin_get_games"
	CmdGetActiveGames  = "get_active_games"
	CmdAdminWatchGame  = "admin_watch_game"
	CmdAdminUnwatch    = "admin_unwatch_game"
	CmdAdminAddScore   = "admin_add_score"
	CmdAdminNextTask   = "admin_next_task"
	CmdAdminSwitchTurn = "admin_switch_turn"
	CmdAdminResetTimer = "admin_reset_timer"
	CmdAdminPauseTimer = "admin_pause_timer"
	CmdAdminFinishGame = "admin_finish_game"
	CmdGetTasks        = "get_tasks"
	CmdAddTask         = "add_task"
	CmdDeleteTask      = "delete_task"
	CmdUpdateTask      = "update_task"
)

// Outbound event types.
const (
	EvtRoomCreated         = "room_created"
	EvtRoomJoined          = "room_joined"
	EvtPartnerJoined       = "partner_joined"
	EvtPartnerDisconnected = "partner_disconnected"
	EvtGameSelected        = "game_selected"
	EvtPlayerReadyStatus   = "player_ready_status"
	EvtGameStarted         = "game_started"
	EvtTimerUpdate         = "timer_update"
	EvtTimerPaused         = "timer_paused"
	EvtTimerFinished       = "timer_finished"
	EvtScoresUpdated       = "scores_updated"
	EvtNextTask            = "next_task"
	EvtTurnChanged         = "turn_changed"
	EvtAnswerSubmitted     = "answer_submitted"
	EvtWordAdded           = "word_added"
	EvtGameFinished        = "game_finished"
	EvtReturnToGames       = "return_to_games"
	EvtError               = "error"

	EvtAdminAuthenticated = "admin_authenticated"
	EvtAdminGamesList     = "admin_games_list"
	EvtAdminGameData      = "admin_game_data"
	EvtRoomClosed         = "room_closed"
	EvtTasksList          = "tasks_list"
	EvtTaskAdded          = "task_added"
	EvtTaskDeleted        = "task_deleted"
	EvtTaskUpdated        = "task_updated"
)

// Command is any message a client sends. Only the fields relevant to Type
// are set.
type Command struct {
	Type       string          `json:"type"`
	RoomCode   string          `json:"roomCode,omitempty"`
	GameKind   string          `json:"gameKind,omitempty"`
	Ready      bool            `json:"ready,omitempty"`
	Action     string          `json:"action,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	Points     int             `json:"points,omitempty"`
	SwitchTurn bool            `json:"switchTurn,omitempty"`
	Word       string          `json:"word,omitempty"`
	Role       Role            `json:"role,omitempty"`
	Seconds    int             `json:"seconds,omitempty"`
	Password   string          `json:"password,omitempty"`
	Category   string          `json:"category,omitempty"`
	Level      string          `json:"level,omitempty"`
	Record     json.RawMessage `json:"record,omitempty"`
	TaskID     string          `json:"taskId,omitempty"`
	Patch      json.RawMessage `json:"patch,omitempty"`
}

// Event carries no payload beyond its type.
type Event struct {
	Type string `json:"type"`
}

type RoomMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	Role     Role   `json:"role,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorMessage(err error) ErrorMessage {
	return ErrorMessage{Type: EvtError, Message: err.Error()}
}

type GameSelected struct {
	Type     string `json:"type"`
	GameKind string `json:"gameKind"`
}

type ReadyStatus struct {
	Type     string `json:"type"`
	Role     Role   `json:"role"`
	Ready    bool   `json:"ready"`
	AllReady bool   `json:"allReady"`
}

type GameStarted struct {
	Type          string         `json:"type"`
	GameKind      string         `json:"gameKind"`
	Tasks         []tasks.Record `json:"tasks"`
	StartingRole  Role           `json:"startingRole"`
	HasTimer      bool           `json:"hasTimer"`
	TimerDuration int            `json:"timerDuration"`
}

type TimerUpdate struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

type TimerPaused struct {
	Type      string `json:"type"`
	Paused    bool   `json:"paused"`
	Remaining int    `json:"remaining"`
}

type ScoresUpdated struct {
	Type   string       `json:"type"`
	Scores map[Role]int `json:"scores"`
}

type NextTask struct {
	Type     string       `json:"type"`
	Task     tasks.Record `json:"task"`
	Index    int          `json:"index"`
	TurnRole Role         `json:"turnRole,omitempty"`
}

type TurnChanged struct {
	Type     string `json:"type"`
	TurnRole Role   `json:"turnRole"`
}

// Entry is one submitted action in a room's log.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Role      Role            `json:"role,omitempty"`
	Action    string          `json:"action"`
	Value     json.RawMessage `json:"value,omitempty"`
}

type AnswerSubmitted struct {
	Type  string `json:"type"`
	Entry Entry  `json:"entry"`
}

type WordEntry struct {
	Word string `json:"word"`
	Role Role   `json:"role"`
}

type WordAdded struct {
	Type string `json:"type"`
	WordEntry
}

type GameFinished struct {
	Type        string       `json:"type"`
	FinalScores map[Role]int `json:"finalScores"`
}

type AdminAuthenticated struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
}

type AdminGamesList struct {
	Type  string    `json:"type"`
	Games []Summary `json:"games"`
}

type AdminGameData struct {
	Type string   `json:"type"`
	Game Snapshot `json:"game"`
}

type TasksList struct {
	Type     string         `json:"type"`
	Category string         `json:"category"`
	Level    string         `json:"level,omitempty"`
	Tasks    []tasks.Record `json:"tasks"`
}

type TaskChanged struct {
	Type     string       `json:"type"`
	Category string       `json:"category"`
	Task     tasks.Record `json:"task"`
}

type TaskDeleted struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	TaskID   string `json:"taskId"`
}

// TimerSnapshot is the observable state of a room's countdown.
type TimerSnapshot struct {
	Running   bool `json:"running"`
	Remaining int  `json:"remaining"`
	Paused    bool `json:"paused"`
}

// Summary is the admin listing entry for one room.
type Summary struct {
	RoomCode    string        `json:"roomCode"`
	GameKind    string        `json:"gameKind"`
	State       State         `json:"state"`
	PlayerCount int           `json:"playerCount"`
	Scores      map[Role]int  `json:"scores"`
	Cursor      int           `json:"cursor"`
	TaskCount   int           `json:"taskCount"`
	Turn        Role          `json:"turn"`
	Timer       TimerSnapshot `json:"timer"`
}

type PlayerView struct {
	Role  Role `json:"role"`
	Ready bool `json:"ready"`
}

// Snapshot is everything an admin sees about a watched room.
type Snapshot struct {
	Summary
	Players    []PlayerView   `json:"players"`
	Tasks      []tasks.Record `json:"tasks"`
	Log        []Entry        `json:"log"`
	Words      []WordEntry    `json:"words"`
	Observers  int            `json:"observers"`
	CreatedAt  time.Time      `json:"createdAt"`
	LastActive time.Time      `json:"lastActive"`
}
