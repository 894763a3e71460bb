package util

const TimeFormat = "2006-01-02 15:04:05"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	ResultsBackendSheets = "sheets"
	ResultsBackendMySQL  = "mysql"
)

const (
	SessionBackendToken  = "token"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

const (
	MimePNG       = "image/png"
	MimeTextPlain = "text/plain; charset=utf-8"
)

const NoDataMessage = "No data available."
