// catalog-import 將食譜與庫存資料匯入設定的資料來源。
//
// 用法：
//
//	catalog-import -file pantry.xlsx
//	catalog-import -file recipes.html -selector "#recipes"
//	catalog-import -url https://example.com/recipes -selector "table.recipes"
//
// xlsx 讀取 Recipes 與 Inventory 兩個工作表；HTML 只匯入食譜。
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recipe-recommender/internal/core/catalog"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/infrastructure/store"
	"recipe-recommender/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "匯入檔路徑 (.xlsx 或 .html)")
	pageURL := flag.String("url", "", "含食譜表格的網頁")
	selector := flag.String("selector", "table", "HTML 表格的 CSS selector")
	timeout := flag.Duration("timeout", 30*time.Second, "下載與寫入逾時")
	flag.Parse()

	if (*file == "") == (*pageURL == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -url is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wb, source, err := load(ctx, *file, *pageURL, *selector, *timeout)
	if err != nil {
		common.LogFatal("讀取匯入資料失敗", zap.String("source", source), zap.Error(err))
	}

	db, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		common.LogFatal("Failed to open store", zap.Error(err))
	}
	defer db.Close()

	if err := db.SaveRecipes(ctx, wb.Recipes); err != nil {
		common.LogFatal("寫入食譜失敗", zap.Error(err))
	}
	if err := db.SaveInventory(ctx, wb.Inventory); err != nil {
		common.LogFatal("寫入庫存失敗", zap.Error(err))
	}

	common.LogInfo("匯入完成",
		zap.String("source", source),
		zap.String("driver", cfg.Store.Driver),
		zap.Int("recipes", len(wb.Recipes)),
		zap.Int("inventory", len(wb.Inventory)),
	)
}

// load 依來源類型解析匯入資料
func load(ctx context.Context, file, pageURL, selector string, timeout time.Duration) (*catalog.Workbook, string, error) {
	if pageURL != "" {
		body, err := fetch(ctx, pageURL, timeout)
		if err != nil {
			return nil, pageURL, err
		}
		recipes, err := catalog.ParseHTMLTable(bytes.NewReader(body), selector)
		return &catalog.Workbook{Recipes: recipes}, pageURL, err
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, file, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(file)) {
	case ".xlsx":
		wb, err := catalog.ParseWorkbook(f)
		return wb, file, err
	case ".html", ".htm":
		recipes, err := catalog.ParseHTMLTable(f, selector)
		return &catalog.Workbook{Recipes: recipes}, file, err
	default:
		return nil, file, fmt.Errorf("unsupported file type %q", filepath.Ext(file))
	}
}

func fetch(ctx context.Context, pageURL string, timeout time.Duration) ([]byte, error) {
	resp, err := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		R().
		SetContext(ctx).
		SetHeader("User-Agent", "recipe-recommender-import").
		SetDoNotParseResponse(true).
		Get(pageURL)
	if err != nil {
		return nil, err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return nil, errors.New("unexpected status " + resp.Status())
	}
	return io.ReadAll(body)
}
