package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The two production ERPs are read-only sources. The live source is
// queried at request time; the remote source is only touched by the
// sync engine. Either may be left unconfigured, in which case the
// corresponding getter returns nil and callers degrade gracefully.

var (
	liveDB   *gorm.DB
	remoteDB *gorm.DB
)

// GetLiveDB returns the continuously reachable ERP connection, or nil
// when LIVE_DB_* configuration is absent.
func GetLiveDB() *gorm.DB {
	return liveDB
}

// GetRemoteDB returns the occasionally reachable ERP connection, or nil
// when REMOTE_DB_* configuration is absent.
func GetRemoteDB() *gorm.DB {
	return remoteDB
}

// ConnectLiveSource attempts a single connection to the live ERP.
// Unlike the app DB there is no retry loop: an unreachable or
// unconfigured live source must not stall startup, the query engine
// treats it as an empty contributor.
func ConnectLiveSource() {
	liveDB = connectSource("LIVE_DB")
}

// ConnectRemoteSource attempts a single connection to the remote ERP.
// Only the sync binary calls this; a failure there aborts the run.
func ConnectRemoteSource() {
	remoteDB = connectSource("REMOTE_DB")
}

func connectSource(prefix string) *gorm.DB {
	user := strings.TrimSpace(os.Getenv(prefix + "_USER"))
	password := os.Getenv(prefix + "_PASSWORD")
	host := strings.TrimSpace(os.Getenv(prefix + "_HOST"))
	port := strings.TrimSpace(os.Getenv(prefix + "_PORT"))
	name := strings.TrimSpace(os.Getenv(prefix + "_NAME"))

	if user == "" || host == "" || port == "" || name == "" {
		log.Printf("%s_* configuration incomplete; source disabled", prefix)
		return nil
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&readTimeout=%s",
		user, password, host, port, name, sourceReadTimeout())

	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("failed to connect %s source: %v; source disabled", prefix, err)
		return nil
	}
	if sqlDB, derr := conn.DB(); derr == nil && sqlDB != nil {
		sqlDB.SetMaxOpenConns(intFromEnv(prefix+"_MAX_OPEN_CONNS", 10))
		sqlDB.SetMaxIdleConns(intFromEnv(prefix+"_MAX_IDLE_CONNS", 2))
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}
	log.Printf("connected to %s source", prefix)
	return conn
}

func sourceReadTimeout() string {
	v := strings.TrimSpace(os.Getenv("SOURCE_READ_TIMEOUT"))
	if v == "" {
		return "90s"
	}
	return v
}
