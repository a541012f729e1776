package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recipe-recommender/internal/pkg/common"
)

// PostgresStore 以 PostgreSQL 儲存庫存與食譜
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore 建立連線池並初始化資料表
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS inventory_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit TEXT NOT NULL DEFAULT '',
			expiry_date TIMESTAMPTZ NULL,
			about_to_expire BOOLEAN NOT NULL DEFAULT FALSE,
			purchase_date TIMESTAMPTZ NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recipes (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			ingredients JSONB NOT NULL,
			instructions JSONB NOT NULL,
			meal_type VARCHAR(20) NOT NULL DEFAULT 'any',
			base_score DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory_items(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recipes_meal_type ON recipes(meal_type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) ListInventory(ctx context.Context, userID string) ([]common.InventoryItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, category, quantity, unit, expiry_date, about_to_expire, purchase_date
		FROM inventory_items
		WHERE user_id = $1
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := []common.InventoryItem{}
	for rows.Next() {
		var (
			it     common.InventoryItem
			bought *time.Time
		)
		if err := rows.Scan(&it.ID, &it.UserID, &it.Name, &it.Category, &it.Quantity, &it.Unit,
			&it.ExpiryDate, &it.AboutToExpire, &bought); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		if bought != nil {
			it.PurchaseDate = *bought
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) ListRecipes(ctx context.Context, mealType common.MealType, limit int) ([]common.RecipeRecord, error) {
	query := `
		SELECT id, title, image, ingredients::text, instructions::text, meal_type, base_score
		FROM recipes
		WHERE 1=1
	`
	args := []interface{}{}
	if m, ok := mealTypeFilter(mealType); ok {
		args = append(args, string(m))
		query += fmt.Sprintf(" AND meal_type IN ($%d, 'any')", len(args))
	}
	query += " ORDER BY title, id"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []common.RecipeRecord{}
	for rows.Next() {
		var (
			r                                common.RecipeRecord
			ingredients, instructions, meal string
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

func (s *PostgresStore) SaveInventory(ctx context.Context, items []common.InventoryItem) error {
	ensureInventoryIDs(items)

	batch := &pgx.Batch{}
	for _, it := range items {
		var bought *time.Time
		if !it.PurchaseDate.IsZero() {
			p := it.PurchaseDate
			bought = &p
		}
		batch.Queue(`
			INSERT INTO inventory_items (id, user_id, name, category, quantity, unit, expiry_date, about_to_expire, purchase_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				user_id = EXCLUDED.user_id, name = EXCLUDED.name, category = EXCLUDED.category,
				quantity = EXCLUDED.quantity, unit = EXCLUDED.unit, expiry_date = EXCLUDED.expiry_date,
				about_to_expire = EXCLUDED.about_to_expire, purchase_date = EXCLUDED.purchase_date
		`, it.ID, it.UserID, it.Name, it.Category, it.Quantity, it.Unit, it.ExpiryDate, it.AboutToExpire, bought)
	}
	return s.sendBatch(ctx, batch)
}

func (s *PostgresStore) SaveRecipes(ctx context.Context, recipes []common.RecipeRecord) error {
	ensureRecipeIDs(recipes)

	batch := &pgx.Batch{}
	for _, r := range recipes {
		ingredients, instructions, err := encodeRecipeLists(r)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO recipes (id, title, image, ingredients, instructions, meal_type, base_score)
			VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title, image = EXCLUDED.image, ingredients = EXCLUDED.ingredients,
				instructions = EXCLUDED.instructions, meal_type = EXCLUDED.meal_type, base_score = EXCLUDED.base_score
		`, r.ID, r.Title, r.Image, ingredients, instructions,
			string(common.ParseMealType(string(r.MealType))), r.BaseScore)
	}
	return s.sendBatch(ctx, batch)
}

// sendBatch 在單一交易中送出批次
func (s *PostgresStore) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
