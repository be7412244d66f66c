package model

type AccessLevel string

const (
	AccessViewOnly     AccessLevel = "VIEW_ONLY"
	AccessViewDownload AccessLevel = "VIEW_DOWNLOAD"
	AccessUpload       AccessLevel = "UPLOAD"
	AccessManage       AccessLevel = "MANAGE"
	AccessNone         AccessLevel = "NO_ACCESS"
)

func (l AccessLevel) Valid() bool {
	switch l {
	case AccessViewOnly, AccessViewDownload, AccessUpload, AccessManage, AccessNone:
		return true
	}
	return false
}

type TargetType string

const (
	TargetUser     TargetType = "USER"
	TargetOperator TargetType = "OPERATOR"
)

type Permission struct {
	FolderID    string      `json:"folder_id"`
	TargetID    string      `json:"target_id"`
	TargetType  TargetType  `json:"target_type"`
	AccessLevel AccessLevel `json:"access_level"`
}

// Action : действие в проводнике, которое проверяет гейт прав
type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionUpload   Action = "upload"
	ActionManage   Action = "manage"
)

var actionRank = map[Action]int{
	ActionView:     1,
	ActionDownload: 2,
	ActionUpload:   3,
	ActionManage:   4,
}

var levelRank = map[AccessLevel]int{
	AccessNone:         0,
	AccessViewOnly:     1,
	AccessViewDownload: 2,
	AccessUpload:       3,
	AccessManage:       4,
}

// Allows : уровни вложены друг в друга, MANAGE разрешает всё, NO_ACCESS ничего
func (l AccessLevel) Allows(action Action) bool {
	need, ok := actionRank[action]
	if !ok {
		return false
	}
	return levelRank[l] >= need
}
