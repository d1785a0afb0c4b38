package model

type SessionFile struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	StoreKey  string `json:"store_key"`
	Ctime     int64  `json:"ctime"`
}
