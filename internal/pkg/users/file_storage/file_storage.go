package file_storage

import (
	"fmt"
	"os"
	"sync"

	json "github.com/goccy/go-json"

	"insta_saver_bot/internal/pkg/users/domain"
)

// FileStorage keeps the user activity log as one indented JSON array
// and the admin designation as a single JSON object, each in its own
// file. One mutex serializes all readers and writers in this process;
// a second process writing the same files still races (last write
// wins on the whole file).
type FileStorage struct {
	usersPath string
	adminPath string
	mu        sync.Mutex
}

type adminRecord struct {
	AdminID int64 `json:"admin_id"`
}

func NewFileStorage(usersPath, adminPath string) *FileStorage {
	return &FileStorage{
		usersPath: usersPath,
		adminPath: adminPath,
	}
}

func (f *FileStorage) RecordUser(rec domain.UserRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.readUsers()
	if err != nil {
		return err
	}

	found := false
	for i := range users {
		if users[i].UserID == rec.UserID {
			users[i].Timestamp = rec.Timestamp
			found = true
			break
		}
	}
	if !found {
		users = append(users, rec)
	}

	return f.writeUsers(users)
}

func (f *FileStorage) ListUsers() ([]domain.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readUsers()
}

func (f *FileStorage) GetAdmin() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.adminPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var rec adminRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("parse %s: %w", f.adminPath, err)
	}
	return rec.AdminID, nil
}

// SetAdmin writes the admin file only when it does not exist yet. The
// exist-check and the write are separate steps, so a second process
// racing the check can still overwrite; accepted for best-effort
// single-admin semantics.
func (f *FileStorage) SetAdmin(userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.adminPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	data, err := json.Marshal(adminRecord{AdminID: userID})
	if err != nil {
		return err
	}
	return os.WriteFile(f.adminPath, data, 0644)
}

func (f *FileStorage) readUsers() ([]domain.UserRecord, error) {
	data, err := os.ReadFile(f.usersPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var users []domain.UserRecord
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.usersPath, err)
	}
	return users, nil
}

func (f *FileStorage) writeUsers(users []domain.UserRecord) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return err
	}

	tmpFile := f.usersPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, f.usersPath)
}
