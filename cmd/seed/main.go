package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rateworks/critica/internal/config"
	"github.com/rateworks/critica/internal/database"
	"github.com/rateworks/critica/internal/models"
)

func main() {
	csvDir := flag.String("csv", "", "directory with CSV fixtures to bulk load")
	flag.Parse()

	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	seedAdmin()

	if *csvDir != "" {
		loadCSVData(*csvDir)
	}
}

// seedAdmin creates the bootstrap superuser account from env, once.
func seedAdmin() {
	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")

	if adminUsername == "" || adminEmail == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL")
	}

	var admin models.User
	result := database.DB.Where("email = ?", adminEmail).First(&admin)

	if result.Error == nil {
		log.Println("Admin user already exists:", admin.Username)
		return
	}

	admin = models.User{
		ID:          uuid.New(),
		Username:    adminUsername,
		Email:       adminEmail,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
		IsStaff:     true,
		Confirmed:   true,
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	log.Println("Admin user created:", admin.Username)
}

// loadCSVData bulk loads catalog fixtures. Files follow the layouts of the
// upstream dataset: category.csv, genre.csv, titles.csv, genre_title.csv,
// users.csv, review.csv, comments.csv. Row ids are preserved for the
// integer-keyed tables; user rows get fresh UUIDs with the CSV id kept in
// an in-memory map for the author columns.
func loadCSVData(dir string) {
	userIDs := map[string]uuid.UUID{}

	forEachRow(dir, "category.csv", func(row map[string]string) {
		insert(&models.Category{
			ID:   mustUint(row["id"]),
			Name: row["name"],
			Slug: row["slug"],
		})
	})

	forEachRow(dir, "genre.csv", func(row map[string]string) {
		insert(&models.Genre{
			ID:   mustUint(row["id"]),
			Name: row["name"],
			Slug: row["slug"],
		})
	})

	forEachRow(dir, "titles.csv", func(row map[string]string) {
		categoryID := mustUint(row["category"])
		insert(&models.Title{
			ID:         mustUint(row["id"]),
			Name:       row["name"],
			Year:       int(mustUint(row["year"])),
			CategoryID: &categoryID,
		})
	})

	forEachRow(dir, "genre_title.csv", func(row map[string]string) {
		insert(&models.TitleGenre{
			TitleID: mustUint(row["title_id"]),
			GenreID: mustUint(row["genre_id"]),
		})
	})

	forEachRow(dir, "users.csv", func(row map[string]string) {
		role := models.Role(row["role"])
		if !role.Valid() {
			role = models.RoleUser
		}
		user := &models.User{
			ID:        uuid.New(),
			Username:  row["username"],
			Email:     row["email"],
			Role:      role,
			Bio:       row["bio"],
			FirstName: row["first_name"],
			LastName:  row["last_name"],
			Confirmed: true,
		}
		insert(user)
		userIDs[row["id"]] = user.ID
	})

	forEachRow(dir, "review.csv", func(row map[string]string) {
		insert(&models.Review{
			ID:        mustUint(row["id"]),
			TitleID:   mustUint(row["title_id"]),
			AuthorID:  mustUser(userIDs, row["author"]),
			Text:      row["text"],
			Score:     int(mustUint(row["score"])),
			CreatedAt: parseDate(row["pub_date"]),
		})
	})

	forEachRow(dir, "comments.csv", func(row map[string]string) {
		insert(&models.Comment{
			ID:        mustUint(row["id"]),
			ReviewID:  mustUint(row["review_id"]),
			AuthorID:  mustUser(userIDs, row["author"]),
			Text:      row["text"],
			CreatedAt: parseDate(row["pub_date"]),
		})
	})

	log.Println("CSV data loaded from", dir)
}

// forEachRow streams a headered CSV file, calling fn with each record as a
// column-name map. A missing file is skipped so partial fixture sets load.
func forEachRow(dir, name string, fn func(row map[string]string)) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			log.Println("Skipping missing fixture:", name)
			return
		}
		log.Fatalf("Failed to open %s: %v", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		log.Fatalf("Failed to read %s header: %v", name, err)
	}

	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read %s: %v", name, err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		fn(row)
		rows++
	}

	log.Printf("Loaded %d rows from %s", rows, name)
}

func insert(value any) {
	if err := database.DB.Create(value).Error; err != nil {
		log.Fatalf("Failed to insert %T: %v", value, err)
	}
}

func mustUint(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		log.Fatalf("Invalid integer %q: %v", s, err)
	}
	return uint(v)
}

func mustUser(userIDs map[string]uuid.UUID, csvID string) uuid.UUID {
	id, ok := userIDs[csvID]
	if !ok {
		log.Fatalf("Unknown user id %q referenced in fixtures", csvID)
	}
	return id
}

func parseDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
