package vault

// DBProfile is the nested database-connection record the registry is
// opened with. Port is kept as a string because that is how existing
// documents store it.
type DBProfile struct {
	Server   string `json:"server"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	Port     string `json:"port"`
	Type     string `json:"type"`
}

// RDPCredential is a username/password pair for an RDP target.
type RDPCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// document is the single persisted unit. Every map is keyed by the
// decimal string form of a registry row id; the string form is kept
// for compatibility with documents written by older versions and by
// the legacy migration.
type document struct {
	DB             DBProfile                `json:"db"`
	Passwords      map[string]string        `json:"passwords"`
	KeyPaths       map[string]string        `json:"key_paths"`
	KeyPasswords   map[string]string        `json:"key_passwords"`
	RDPCredentials map[string]RDPCredential `json:"rdp_credentials"`
	TOTPSecrets    map[string]string        `json:"totp_secrets"`
}

func defaultDocument() document {
	return document{
		DB: DBProfile{
			Port: "5432",
			Type: "postgres",
		},
		Passwords:      make(map[string]string),
		KeyPaths:       make(map[string]string),
		KeyPasswords:   make(map[string]string),
		RDPCredentials: make(map[string]RDPCredential),
		TOTPSecrets:    make(map[string]string),
	}
}

// ensureMaps repairs nil maps after unmarshaling a document that was
// written without some sections.
func (d *document) ensureMaps() {
	if d.Passwords == nil {
		d.Passwords = make(map[string]string)
	}
	if d.KeyPaths == nil {
		d.KeyPaths = make(map[string]string)
	}
	if d.KeyPasswords == nil {
		d.KeyPasswords = make(map[string]string)
	}
	if d.RDPCredentials == nil {
		d.RDPCredentials = make(map[string]RDPCredential)
	}
	if d.TOTPSecrets == nil {
		d.TOTPSecrets = make(map[string]string)
	}
}
