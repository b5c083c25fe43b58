package config

type StorageConfig interface {
	GetDBPath() string
	GetUploadFolder() string
	GetMaxUploadBytes() int64
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetDBPath() string {
	return GetEnv("DB_PATH", "./data/aibanker.db")
}

func (Storage) GetUploadFolder() string {
	return GetEnv("UPLOAD_FOLDER", "./data/uploads")
}

func (Storage) GetMaxUploadBytes() int64 {
	return 50 << 20 // 50 MB, matches the original backend limit
}
