package export

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// TableName sqlite中的记录表名
const TableName = "competition_rates"

const createTableSQL = `CREATE TABLE "competition_rates" (
	"id" INTEGER PRIMARY KEY AUTOINCREMENT,
	"university_name" TEXT NOT NULL,
	"admission_group" TEXT NOT NULL,
	"admission_type" TEXT NOT NULL,
	"department_name" TEXT NOT NULL,
	"quota" INTEGER NOT NULL,
	"applicant_count" INTEGER NOT NULL,
	"competition_rate" REAL NOT NULL,
	"competition_rate_display" TEXT NOT NULL
)`

const insertSQL = `INSERT INTO "competition_rates" (
	"university_name", "admission_group", "admission_type", "department_name",
	"quota", "applicant_count", "competition_rate", "competition_rate_display"
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

var indexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_competition_rates_university ON competition_rates(university_name)`,
	`CREATE INDEX IF NOT EXISTS idx_competition_rates_group ON competition_rates(admission_group)`,
	`CREATE INDEX IF NOT EXISTS idx_competition_rates_rate ON competition_rates(competition_rate)`,
}

// SQLiteExporter 基于modernc.org/sqlite(纯Go,无需cgo)的导出器
// 每次导出重建数据库文件
type SQLiteExporter struct{}

// Extension 实现Exporter接口
func (e *SQLiteExporter) Extension() string { return ".db" }

// Export 实现Exporter接口
func (e *SQLiteExporter) Export(path string, records []models.CompetitionRateRecord) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除旧数据库失败: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("打开数据库失败: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`DROP TABLE IF EXISTS "competition_rates"`); err != nil {
		return err
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("创建表失败: %w", err)
	}

	if err := insertRecords(db, records); err != nil {
		return err
	}

	for _, idx := range indexSQL {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("创建索引失败: %w", err)
		}
	}

	utils.Infof("🗄️  已导出 %d 条记录: %s", len(records), path)
	return nil
}

// insertRecords 在单个事务中批量插入
func insertRecords(db *sql.DB, records []models.CompetitionRateRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("准备插入语句失败: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(
			r.UniversityName,
			string(r.AdmissionGroup),
			r.AdmissionType,
			r.DepartmentName,
			r.Quota,
			r.ApplicantCount,
			r.CompetitionRate,
			r.CompetitionRateDisplay,
		); err != nil {
			return fmt.Errorf("插入第%d条记录失败: %w", i+1, err)
		}
	}

	return tx.Commit()
}
