// Command expire-subscriptions marks active subscriptions whose period has
// ended as expired. Intended to run from cron, e.g. once per hour.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/avifenesh/expense-track-sub006/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func logln(format string, args ...interface{}) {
	fmt.Printf("%s "+format+"\n",
		append([]interface{}{time.Now().UTC().Format(time.RFC3339)}, args...)...)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s "+format+"\n",
		append([]interface{}{time.Now().UTC().Format(time.RFC3339)}, args...)...)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fail("DATABASE_URL is not set")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fail("open database: %v", err)
	}

	now := time.Now().UTC()
	res := db.Model(&models.Subscription{}).
		Where("status = ? AND current_period_end < ?", models.SubActive, now).
		Update("status", models.SubExpired)
	if res.Error != nil {
		fail("expire subscriptions: %v", res.Error)
	}

	logln("expired %d subscription(s)", res.RowsAffected)
}
