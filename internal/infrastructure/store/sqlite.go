package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"recipe-recommender/internal/pkg/common"
)

// SQLiteStore 以 SQLite 檔案儲存庫存與食譜
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 開啟資料庫並建立資料表；dsn 為 ":memory:" 時使用記憶體資料庫
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// 記憶體資料庫每條連線各自獨立
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS inventory_items (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        category TEXT NOT NULL DEFAULT '',
        quantity REAL NOT NULL DEFAULT 0,
        unit TEXT NOT NULL DEFAULT '',
        expiry_date TEXT,
        about_to_expire INTEGER NOT NULL DEFAULT 0,
        purchase_date TEXT
    );

    CREATE TABLE IF NOT EXISTS recipes (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        image TEXT NOT NULL DEFAULT '',
        ingredients TEXT NOT NULL,
        instructions TEXT NOT NULL,
        meal_type TEXT NOT NULL DEFAULT 'any',
        base_score REAL NOT NULL DEFAULT 0
    );

    CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory_items(user_id);
    CREATE INDEX IF NOT EXISTS idx_recipes_meal_type ON recipes(meal_type);
    `
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListInventory(ctx context.Context, userID string) ([]common.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, name, category, quantity, unit, expiry_date, about_to_expire, purchase_date
        FROM inventory_items
        WHERE user_id = ?
        ORDER BY name, id
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := []common.InventoryItem{}
	for rows.Next() {
		var (
			it             common.InventoryItem
			expiry, bought sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.Name, &it.Category, &it.Quantity, &it.Unit,
			&expiry, &it.AboutToExpire, &bought); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		if err := applyDates(&it, nullString(expiry), nullString(bought)); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) ListRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.RecipeRecord, error) {
	query := `
        SELECT id, title, image, ingredients, instructions, meal_type, base_score
        FROM recipes
        WHERE 1=1
    `
	args := []interface{}{}
	if m, ok := mealTypeFilter(mealType); ok {
		query += " AND meal_type IN (?, 'any')"
		args = append(args, string(m))
	}
	query += " ORDER BY title, id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []common.RecipeRecord{}
	for rows.Next() {
		var (
			r                          common.RecipeRecord
			ingredients, instructions string
			meal                       string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Image, &ingredients, &instructions, &meal, &r.BaseScore); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		if err := decodeRecipeLists(&r, ingredients, instructions); err != nil {
			return nil, err
		}
		r.MealType = common.ParseMealType(meal)
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (s *SQLiteStore) SaveInventory(ctx context.Context, items []common.InventoryItem) error {
	ensureInventoryIDs(items)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO inventory_items (id, user_id, name, category, quantity, unit, expiry_date, about_to_expire, purchase_date)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            user_id = excluded.user_id, name = excluded.name, category = excluded.category,
            quantity = excluded.quantity, unit = excluded.unit, expiry_date = excluded.expiry_date,
            about_to_expire = excluded.about_to_expire, purchase_date = excluded.purchase_date
    `
	for _, it := range items {
		purchase := &it.PurchaseDate
		if _, err := tx.ExecContext(ctx, query,
			it.ID, it.UserID, it.Name, it.Category, it.Quantity, it.Unit,
			formatTime(it.ExpiryDate), it.AboutToExpire, formatTime(purchase)); err != nil {
			return fmt.Errorf("failed to insert inventory item: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveRecipes(ctx context.Context, recipes []common.RecipeRecord) error {
	ensureRecipeIDs(recipes)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO recipes (id, title, image, ingredients, instructions, meal_type, base_score)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title, image = excluded.image, ingredients = excluded.ingredients,
            instructions = excluded.instructions, meal_type = excluded.meal_type, base_score = excluded.base_score
    `
	for _, r := range recipes {
		ingredients, instructions, err := encodeRecipeLists(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			r.ID, r.Title, r.Image, ingredients, instructions,
			string(common.ParseMealType(string(r.MealType))), r.BaseScore); err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func applyDates(it *common.InventoryItem, expiry, bought *string) error {
	exp, err := parseTime(expiry)
	if err != nil {
		return fmt.Errorf("invalid expiry date for %s: %w", it.ID, err)
	}
	it.ExpiryDate = exp
	if p, err := parseTime(bought); err != nil {
		return fmt.Errorf("invalid purchase date for %s: %w", it.ID, err)
	} else if p != nil {
		it.PurchaseDate = *p
	}
	return nil
}

func encodeRecipeLists(r common.RecipeRecord) (string, string, error) {
	ingredients, err := encodeList(r.Ingredients)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructions, err := encodeList(r.Instructions)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode instructions: %w", err)
	}
	return ingredients, instructions, nil
}

func decodeRecipeLists(r *common.RecipeRecord, ingredients, instructions string) error {
	var err error
	if r.Ingredients, err = decodeList(ingredients); err != nil {
		return fmt.Errorf("invalid ingredients for recipe %s: %w", r.ID, err)
	}
	if r.Instructions, err = decodeList(instructions); err != nil {
		return fmt.Errorf("invalid instructions for recipe %s: %w", r.ID, err)
	}
	return nil
}
