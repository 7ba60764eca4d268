package checks

import (
	"fmt"
	"reflect"
	"strings"

	"visit-tracker/core/database"

	"gorm.io/gorm"
)

// ServerReport strictly types the result of a server integrity check.
type ServerReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckServerIntegrity verifies the database schema using GORM models as the source of truth.
// Every model must implement TableName.
func CheckServerIntegrity(db *gorm.DB, models ...interface{}) (*ServerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models to check")
	}

	report := &ServerReport{
		Driver:  db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Matched: true,
	}

	for _, model := range models {
		val := reflect.TypeOf(model)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		if val.Kind() != reflect.Struct {
			return nil, fmt.Errorf("model %T is not a struct", model)
		}

		tabler, ok := reflect.New(val).Interface().(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %s does not implement TableName", val.Name())
		}
		tableName := tabler.TableName()

		tblReport, err := checkTable(db, val, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue // Partial fail
		}
		if tblReport.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tblReport
	}

	return report, nil
}

func checkTable(db *gorm.DB, val reflect.Type, tableName string) (TableReport, error) {
	tblReport := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	actualCols, err := database.GetTableColumns(db, tableName)
	if err != nil {
		return tblReport, err
	}
	if len(actualCols) == 0 {
		return tblReport, fmt.Errorf("table %s does not exist", tableName)
	}

	actualMap := make(map[string]database.ColumnInfo)
	for _, col := range actualCols {
		actualMap[col.Field] = col
	}

	for i := 0; i < val.NumField(); i++ {
		gormTag := val.Field(i).Tag.Get("gorm")

		colName := parseGormColumn(gormTag)
		if colName == "" {
			continue
		}
		expType := parseGormType(gormTag)

		actCol, exists := actualMap[colName]
		if !exists {
			tblReport.MissingColumns = append(tblReport.MissingColumns, colName)
			tblReport.Status = "error"
			continue
		}

		// Only columns with an explicit type tag are type checked.
		if expType == "" {
			continue
		}
		expType = strings.ToLower(expType)
		if !strings.Contains(actCol.Type, expType) {
			mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
			tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
			tblReport.Status = "error"
		}
	}

	return tblReport, nil
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	return gormTagValue(tag, "column:")
}

func parseGormType(tag string) string {
	return gormTagValue(tag, "type:")
}

func gormTagValue(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, key) {
			return strings.TrimPrefix(p, key)
		}
	}
	return ""
}
