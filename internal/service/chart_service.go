package service

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/internal/util"
	"math_quiz_backend/pkg/monitoring"
	"math_quiz_backend/pkg/tracing"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	correctColor = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	wrongColor   = color.RGBA{R: 221, G: 132, B: 82, A: 255}
)

// ChartService 把结果表渲染成按用户分组的柱状图并写入存储。
// 渲染与写入串行执行，同名文件后写者覆盖先写者。
type ChartService struct {
	Results  repository.ResultsStore
	Storage  *StorageService
	Filename string
	Width    vg.Length
	Height   vg.Length
	Now      func() time.Time

	mu sync.Mutex
}

func NewChartService(results repository.ResultsStore, storage *StorageService, filename string, widthInches, heightInches float64) *ChartService {
	return &ChartService{
		Results:  results,
		Storage:  storage,
		Filename: filename,
		Width:    vg.Length(widthInches) * vg.Inch,
		Height:   vg.Length(heightInches) * vg.Inch,
		Now:      time.Now,
	}
}

// Render 返回图表地址；结果表为空时返回 util.ErrNoResults 且不触碰已有文件
func (s *ChartService) Render(ctx context.Context) (string, error) {
	ctx, span := tracing.Start(ctx, "ChartService.Render")
	defer span.End()

	records, err := s.Results.All(ctx)
	if err != nil {
		return "", fmt.Errorf("load results: %w", err)
	}
	if len(records) == 0 {
		return "", util.ErrNoResults
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	png, err := RenderStatusChart(Summarize(records), s.Width, s.Height)
	if err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}

	url, err := s.Storage.Upload(ctx, s.Filename, bytes.NewReader(png), int64(len(png)), util.MimePNG)
	if err != nil {
		return "", fmt.Errorf("store chart: %w", err)
	}

	monitoring.ChartRenders.Inc()
	// 文件名固定，附加版本号避免浏览器缓存旧图
	return fmt.Sprintf("%s?v=%d", url, s.Now().UnixNano()), nil
}

// RenderStatusChart 每个用户一组，组内 Correct 与 Wrong 两根柱子
func RenderStatusChart(summaries []model.UserSummary, width, height vg.Length) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Answers by User"
	p.X.Label.Text = "Name"
	p.Y.Label.Text = "Count"

	names := make([]string, len(summaries))
	correct := make(plotter.Values, len(summaries))
	wrong := make(plotter.Values, len(summaries))
	for i, s := range summaries {
		names[i] = s.Name
		correct[i] = float64(s.Correct)
		wrong[i] = float64(s.Incorrect)
	}

	barWidth := vg.Points(20)

	correctBars, err := plotter.NewBarChart(correct, barWidth)
	if err != nil {
		return nil, err
	}
	correctBars.LineStyle.Width = vg.Length(0)
	correctBars.Color = correctColor
	correctBars.Offset = -barWidth / 2

	wrongBars, err := plotter.NewBarChart(wrong, barWidth)
	if err != nil {
		return nil, err
	}
	wrongBars.LineStyle.Width = vg.Length(0)
	wrongBars.Color = wrongColor
	wrongBars.Offset = barWidth / 2

	p.Add(correctBars, wrongBars)
	p.Legend.Add(string(model.StatusCorrect), correctBars)
	p.Legend.Add(string(model.StatusWrong), wrongBars)
	p.Legend.Top = true
	p.NominalX(names...)
	p.Y.Min = 0

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
