package models

import (
	"log"

	"github.com/texfocus/wiptrack_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&MirrorOrder{}, &MirrorOrderItem{}, &MirrorUnit{},
		&ProcessCode{},
		&SyncRun{},
		&OpenOpsDocument{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
