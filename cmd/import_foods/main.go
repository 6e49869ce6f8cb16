package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"sugarbeat/internal/config"
	"sugarbeat/internal/db"
	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/store"
	"sugarbeat/models"
)

const ownerEmailEnv = "SUGARBEAT_IMPORT_OWNER_EMAIL"

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

// nutrientColumns maps CSV headers onto stored nutrient keys.
var nutrientColumns = map[string]nutrition.Nutrient{
	"Calories":    nutrition.Calories,
	"Protein":     nutrition.Protein,
	"Sugar":       nutrition.Sugar,
	"Added Sugar": nutrition.AddedSugar,
	"Carbs":       nutrition.Carbs,
	"Fat":         nutrition.Fat,
	"Sodium":      nutrition.Sodium,
	"Fiber":       nutrition.Fiber,
}

func main() {
	csvPath := "custom_foods.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(context.Background(), csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}
	defer file.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(file)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	ownerID, err := resolveImportOwner(ctx, database, os.Getenv(ownerEmailEnv))
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}

	imported, err := importFoods(ctx, store.New(database), ownerID, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d custom foods from %s\n", imported, filepath.Base(csvPath))
	return nil
}

// importFoods creates or updates one custom food per record. Rows are
// matched to existing foods of the owner by case-insensitive name.
func importFoods(ctx context.Context, st *store.Store, ownerID uint, records []map[string]string) (int, error) {
	existing, err := st.ListCustomFoods(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list custom foods: %w", err)
	}
	byName := make(map[string]uint, len(existing))
	for _, food := range existing {
		byName[strings.ToLower(food.Name)] = food.ID
	}

	imported := 0
	for idx, record := range records {
		in := buildCustomFood(record)
		if in.Name == "" {
			applog.Warn(ctx, "skipping row without a name", "row", idx+1)
			continue
		}

		key := strings.ToLower(in.Name)
		if id, ok := byName[key]; ok {
			if _, err := st.UpdateCustomFood(ctx, ownerID, id, in); err != nil {
				return imported, fmt.Errorf("record %d (%s): %w", idx+1, in.Name, err)
			}
		} else {
			food, err := st.CreateCustomFood(ctx, ownerID, in)
			if err != nil {
				return imported, fmt.Errorf("record %d (%s): %w", idx+1, in.Name, err)
			}
			byName[key] = food.ID
		}
		imported++
	}
	return imported, nil
}

func resolveImportOwner(ctx context.Context, database *gorm.DB, email string) (uint, error) {
	if database == nil {
		return 0, fmt.Errorf("database handle is nil")
	}

	email = strings.TrimSpace(email)
	if email != "" {
		user, err := store.New(database).FindUserByEmail(ctx, email)
		if err != nil {
			return 0, fmt.Errorf("find owner by email %q: %w", strings.ToLower(email), err)
		}
		return user.ID, nil
	}

	var user models.User
	if err := database.WithContext(ctx).Order("id asc").First(&user).Error; err != nil {
		return 0, fmt.Errorf("find default owner: %w", err)
	}
	return user.ID, nil
}

func readCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[strings.TrimSpace(key)] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildCustomFood(row map[string]string) store.CustomFoodInput {
	in := store.CustomFoodInput{
		Name:            normalizeText(row["Name"]),
		ServingSize:     parseFirstNumber(row["Serving Size"]),
		ServingUnit:     normalizeValue(row["Serving Unit"]),
		IsShared:        parseBool(row["Shared"]),
		NutritionValues: models.NutritionValues{},
	}
	for column, n := range nutrientColumns {
		raw := normalizeValue(row[column])
		if raw == "" {
			continue
		}
		in.NutritionValues[n.String()] = models.NutritionValue{
			Quantity: nutrition.NonNegative(parseFirstNumber(raw)),
			Unit:     n.DefaultUnit(),
		}
	}
	return in
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func parseFirstNumber(value string) float64 {
	value = normalizeValue(value)
	if value == "" {
		return 0
	}

	matches := numberPattern.FindString(value)
	if matches == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(matches, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "shared":
		return true
	default:
		return false
	}
}
