package repository

import (
	"context"
	"fmt"
	"math_quiz_backend/internal/config"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/util"
	"math_quiz_backend/pkg/logger"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsResultsRepository 把答题记录写入 Google 表格的第一个工作表
type SheetsResultsRepository struct {
	Sheets *sheets.Service
	Drive  *drive.Service

	title string

	mu            sync.Mutex
	spreadsheetID string
	sheetID       int64
	sheetTitle    string
}

// NewSheetsResultsRepository 使用服务账号凭据创建客户端；传入 opts 时覆盖默认凭据（测试用）
func NewSheetsResultsRepository(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (*SheetsResultsRepository, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope, drive.DriveReadonlyScope),
		}
	}

	sheetsSrv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	driveSrv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}

	return &SheetsResultsRepository{
		Sheets:        sheetsSrv,
		Drive:         driveSrv,
		title:         cfg.SpreadsheetTitle,
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

// resolve 查找表格 ID 与第一个工作表，结果缓存；失败时下次调用重试
func (r *SheetsResultsRepository) resolve(ctx context.Context) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sheetTitle != "" {
		return r.spreadsheetID, r.sheetTitle, nil
	}

	if r.spreadsheetID == "" {
		q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
			strings.ReplaceAll(r.title, "'", "\\'"), spreadsheetMimeType)
		list, err := r.Drive.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
		if err != nil {
			return "", "", fmt.Errorf("lookup spreadsheet %q: %w", r.title, err)
		}
		if len(list.Files) == 0 {
			return "", "", fmt.Errorf("%w: %q", util.ErrSpreadsheetNotFound, r.title)
		}
		r.spreadsheetID = list.Files[0].Id
	}

	ss, err := r.Sheets.Spreadsheets.Get(r.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("get spreadsheet %s: %w", r.spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", "", fmt.Errorf("%w: spreadsheet %s has no worksheets", util.ErrSpreadsheetNotFound, r.spreadsheetID)
	}

	r.sheetID = ss.Sheets[0].Properties.SheetId
	r.sheetTitle = ss.Sheets[0].Properties.Title
	return r.spreadsheetID, r.sheetTitle, nil
}

func a1Range(sheetTitle, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheetTitle, "'", "''"), cells)
}

func (r *SheetsResultsRepository) Init(ctx context.Context) error {
	id, title, err := r.resolve(ctx)
	if err != nil {
		return err
	}

	resp, err := r.Sheets.Spreadsheets.Values.Get(id, a1Range(title, "1:1")).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header row: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	// 表头缺失：在最上方插入一行再写入表头
	insert := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    r.sheetID,
					Dimension:  "ROWS",
					StartIndex: 0,
					EndIndex:   1,
				},
			},
		}},
	}
	if _, err := r.Sheets.Spreadsheets.BatchUpdate(id, insert).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert header row: %w", err)
	}

	header := make([]interface{}, len(model.ResultsHeader))
	for i, h := range model.ResultsHeader {
		header[i] = h
	}
	_, err = r.Sheets.Spreadsheets.Values.Update(id, a1Range(title, "A1:F1"), &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	logger.Log.Info("Results sheet header created", zap.String("spreadsheet", id), zap.String("sheet", title))
	return nil
}

// Append 一次请求追加全部记录
func (r *SheetsResultsRepository) Append(ctx context.Context, records []model.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}
	id, title, err := r.resolve(ctx)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, len(records))
	for i, rec := range records {
		rows[i] = []interface{}{
			rec.Name,
			rec.Question,
			rec.UserAnswer,
			rec.CorrectAnswer,
			string(rec.Status),
			rec.Timestamp.Format(util.TimeFormat),
		}
	}

	_, err = r.Sheets.Spreadsheets.Values.Append(id, a1Range(title, "A1"), &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %d rows: %w", len(rows), err)
	}
	return nil
}

func (r *SheetsResultsRepository) All(ctx context.Context) ([]model.AnswerRecord, error) {
	id, title, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.Sheets.Spreadsheets.Values.Get(id, a1Range(title, "A:F")).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return recordsFromRows(resp.Values), nil
}

func (r *SheetsResultsRepository) Ping(ctx context.Context) error {
	id, _, err := r.resolve(ctx)
	if err != nil {
		return err
	}
	_, err = r.Sheets.Spreadsheets.Get(id).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

// recordsFromRows 第一行为表头，按列名取值；空行跳过
func recordsFromRows(rows [][]interface{}) []model.AnswerRecord {
	if len(rows) < 2 {
		return []model.AnswerRecord{}
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[cellString(h)] = i
	}
	get := func(row []interface{}, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return cellString(row[i])
	}

	records := make([]model.AnswerRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		correct, _ := strconv.Atoi(get(row, "Correct Answer"))
		ts, _ := time.ParseInLocation(util.TimeFormat, get(row, "Timestamp"), time.Local)
		records = append(records, model.AnswerRecord{
			Name:          get(row, "Name"),
			Question:      get(row, "Question"),
			UserAnswer:    get(row, "User Answer"),
			CorrectAnswer: correct,
			Status:        model.AnswerStatus(get(row, "Status")),
			Timestamp:     ts,
		})
	}
	return records
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
