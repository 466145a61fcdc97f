package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/traindesk/traindesk/internal/models"
)

var conn *gorm.DB

// Init opens (or creates) the SQLite database at path and migrates the
// schema. Call once at startup before anything touches Conn().
func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.Deal{},
		&models.Course{},
		&models.Delegate{},
		&models.CourseSelection{},
		&models.Booking{},
		&models.BookingForm{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Indexes GORM doesn't auto-create from struct tags. The unique one
	// re-validates server-side what the assignment engine checks in
	// memory: a delegate can hold a given course seat only once.
	conn.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uidx_sel_delegate_course ON course_selections(delegate_id, course_id)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_sel_deal_course     ON course_selections(deal_id, course_id)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_booking_deal_course ON bookings(deal_id, course_id)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_form_deal_status    ON booking_forms(deal_id, status)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}
