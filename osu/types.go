package osu

import (
	"strings"
	"time"
)

// Mode is a game mode.
type Mode string

const (
	Osu   Mode = "osu"
	Taiko Mode = "taiko"
	Catch Mode = "fruits"
	Mania Mode = "mania"
)

// ParseMode parses a game mode name or common abbreviation.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "osu", "std", "standard", "o", "0", "osu!":
		return Osu, true
	case "taiko", "t", "tko", "1", "osu!taiko":
		return Taiko, true
	case "fruits", "catch", "ctb", "c", "2", "osu!catch":
		return Catch, true
	case "mania", "m", "mna", "3", "osu!mania":
		return Mania, true
	default:
		return "", false
	}
}

// Name returns the mode's display name.
func (m Mode) Name() string {
	switch m {
	case Osu, "":
		return "osu!"
	case Taiko:
		return "osu!taiko"
	case Catch:
		return "osu!catch"
	case Mania:
		return "osu!mania"
	default:
		return string(m)
	}
}

// User is a user as returned by https://osu.ppy.sh/docs/#get-user.
type User struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	CountryCode string          `json:"country_code"`
	AvatarURL   string          `json:"avatar_url"`
	CoverURL    string          `json:"cover_url"`
	JoinDate    time.Time       `json:"join_date"`
	PlayMode    Mode            `json:"playmode"`
	IsSupporter bool            `json:"is_supporter"`
	Statistics  *UserStatistics `json:"statistics"`
}

// UserStatistics is a user's statistics in one mode. Rankings entries carry
// the user they describe.
type UserStatistics struct {
	PP           float64     `json:"pp"`
	GlobalRank   int64       `json:"global_rank"`
	CountryRank  int64       `json:"country_rank"`
	HitAccuracy  float64     `json:"hit_accuracy"`
	PlayCount    int64       `json:"play_count"`
	PlayTime     int64       `json:"play_time"`
	RankedScore  int64       `json:"ranked_score"`
	TotalScore   int64       `json:"total_score"`
	MaximumCombo int64       `json:"maximum_combo"`
	Level        Level       `json:"level"`
	GradeCounts  GradeCounts `json:"grade_counts"`
	User         *User       `json:"user"`
}

type Level struct {
	Current  int `json:"current"`
	Progress int `json:"progress"`
}

type GradeCounts struct {
	SS  int `json:"ss"`
	SSH int `json:"ssh"`
	S   int `json:"s"`
	SH  int `json:"sh"`
	A   int `json:"a"`
}

// Score is a score as returned by the user and beatmap score endpoints.
type Score struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Accuracy   float64         `json:"accuracy"`
	Mods       []string        `json:"mods"`
	Score      int64           `json:"score"`
	MaxCombo   int             `json:"max_combo"`
	Perfect    bool            `json:"perfect"`
	PP         float64         `json:"pp"`
	Rank       string          `json:"rank"`
	CreatedAt  time.Time       `json:"created_at"`
	Mode       Mode            `json:"mode"`
	Statistics ScoreStatistics `json:"statistics"`
	Beatmap    *Beatmap        `json:"beatmap"`
	Beatmapset *Beatmapset     `json:"beatmapset"`
	User       *User           `json:"user"`
}

type ScoreStatistics struct {
	Count300  int `json:"count_300"`
	Count100  int `json:"count_100"`
	Count50   int `json:"count_50"`
	CountMiss int `json:"count_miss"`
	CountGeki int `json:"count_geki"`
	CountKatu int `json:"count_katu"`
}

type Beatmap struct {
	ID               int64       `json:"id"`
	BeatmapsetID     int64       `json:"beatmapset_id"`
	Version          string      `json:"version"`
	DifficultyRating float64     `json:"difficulty_rating"`
	Mode             Mode        `json:"mode"`
	Status           string      `json:"status"`
	TotalLength      int         `json:"total_length"`
	BPM              float64     `json:"bpm"`
	MaxCombo         int         `json:"max_combo"`
	URL              string      `json:"url"`
	Beatmapset       *Beatmapset `json:"beatmapset"`
}

type Beatmapset struct {
	ID       int64     `json:"id"`
	Artist   string    `json:"artist"`
	Title    string    `json:"title"`
	Creator  string    `json:"creator"`
	Status   string    `json:"status"`
	Covers   Covers    `json:"covers"`
	Beatmaps []Beatmap `json:"beatmaps"`
}

type Covers struct {
	Cover   string `json:"cover"`
	Cover2x string `json:"'cover@2x'"`
	Card    string `json:"card"`
	List    string `json:"list"`
}

// Rankings is a page of performance rankings.
type Rankings struct {
	Cursor  *Cursor          `json:"cursor"`
	Ranking []UserStatistics `json:"ranking"`
	Total   int              `json:"total"`
}

type Cursor struct {
	Page int `json:"page"`
}

// Room is a multiplayer or playlists room, including daily challenges.
type Room struct {
	ID                  int64          `json:"id"`
	Name                string         `json:"name"`
	Category            string         `json:"category"`
	StartsAt            time.Time      `json:"starts_at"`
	EndsAt              time.Time      `json:"ends_at"`
	ParticipantCount    int            `json:"participant_count"`
	Playlist            []PlaylistItem `json:"playlist"`
	CurrentPlaylistItem *PlaylistItem  `json:"current_playlist_item"`
}

// Item returns the room's current playlist item, or its first one, or nil.
func (r *Room) Item() *PlaylistItem {
	if r.CurrentPlaylistItem != nil {
		return r.CurrentPlaylistItem
	}
	if len(r.Playlist) != 0 {
		return &r.Playlist[0]
	}
	return nil
}

type PlaylistItem struct {
	ID           int64     `json:"id"`
	BeatmapID    int64     `json:"beatmap_id"`
	Beatmap      *Beatmap  `json:"beatmap"`
	RequiredMods []ModSpec `json:"required_mods"`
}

type ModSpec struct {
	Acronym string `json:"acronym"`
}

// RoomScore is a user's aggregate result in a room.
type RoomScore struct {
	Accuracy   float64 `json:"accuracy"`
	Attempts   int     `json:"attempts"`
	Completed  int     `json:"completed"`
	PP         float64 `json:"pp"`
	RoomID     int64   `json:"room_id"`
	TotalScore int64   `json:"total_score"`
	UserID     int64   `json:"user_id"`
	User       *User   `json:"user"`
}
