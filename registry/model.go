package registry

// Auth types and protocol types stored on a connection row.
const (
	AuthKey      = "key"
	AuthPassword = "password"

	TypeSSH = "ssh"
	TypeRDP = "rdp"
)

// RootFolder is the folder name connections without a folder group
// under. An empty folder column means the same thing.
const RootFolder = "default"

// Connection is one remote-host record. The registry assigns ID on
// first save and it is immutable afterwards; the vault references rows
// through it.
type Connection struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"size:255;not null"`
	Folder   string `gorm:"size:255"`
	IP       string `gorm:"column:ip;size:255;not null"`
	Username string `gorm:"size:255"`
	AuthType string `gorm:"size:50;not null;default:key"`
	Port     *int   `gorm:"default:22"`
	Type     string `gorm:"size:50;not null;default:ssh"`
}

// TableName keeps the table the original tooling created.
func (Connection) TableName() string { return "connections" }

// FolderName normalizes the folder column for grouping.
func (c Connection) FolderName() string {
	if c.Folder == "" {
		return RootFolder
	}
	return c.Folder
}

// SSHPort returns the port to dial, defaulting to 22.
func (c Connection) SSHPort() int {
	if c.Port == nil || *c.Port == 0 {
		return 22
	}
	return *c.Port
}
