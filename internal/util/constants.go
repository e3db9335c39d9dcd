package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

const MimeCSV = "text/csv"
