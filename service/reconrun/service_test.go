package reconrun

import (
	"context"
	"errors"
	"testing"

	"recon-service/service/models"
	"recon-service/service/recon"
	"recon-service/testutil"
)

type stubReference struct {
	projects []string
	files    map[string][]map[string]interface{}
	errOn    map[string]error
}

func (s *stubReference) ListProjects(ctx context.Context) ([]string, error) {
	return s.projects, nil
}

func (s *stubReference) ListFiles(ctx context.Context, projectID string) ([]map[string]interface{}, error) {
	if err := s.errOn[projectID]; err != nil {
		return nil, err
	}
	return s.files[projectID], nil
}

type stubTarget struct {
	samples map[string][]string
}

func (s *stubTarget) DatasetSamples(ctx context.Context, projectID, datasetName string) ([]string, error) {
	return s.samples[projectID+"/"+datasetName], nil
}

func newTestService(t *testing.T, ref *stubReference, target *stubTarget) (*Service, *testutil.TestDB) {
	t.Helper()
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	engine := recon.NewEngine(ref, target, nil, 1)
	return NewService(tdb.DB, engine, nil), tdb
}

func TestRunFull(t *testing.T) {
	ref := &stubReference{
		projects: []string{"TCGA-BRCA", "TCGA-LUAD"},
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {
				testutil.RawFileRecord("f-1", "Gene Expression Quantification", "STAR - Counts", "", "RNA-Seq", "S1", "Normal"),
			},
			"TCGA-LUAD": {
				testutil.RawFileRecord("f-2", "Gene Expression Quantification", "STAR - Counts", "", "RNA-Seq", "S2", "Normal"),
			},
		},
	}
	target := &stubTarget{samples: map[string][]string{
		"TCGA-BRCA/star_counts": {"S1"},
		// TCGA-LUAD侧无应答,数据集缺失
	}}

	svc, tdb := newTestService(t, ref, target)

	run, results, err := svc.Run(context.Background(), nil, models.TriggerCLI)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.Mode != "full" || run.ProjectCount != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.Status != models.RunStatusCompleted {
		t.Errorf("status = %s", run.Status)
	}
	if run.MissingDatasetTotal != 1 {
		t.Errorf("MissingDatasetTotal = %d, 期望 1", run.MissingDatasetTotal)
	}
	if len(results) != 2 {
		t.Fatalf("结果数 = %d", len(results))
	}

	// 项目报告落库,可按运行ID回查
	var reports []models.ProjectReport
	if err := tdb.DB.Where("run_id = ?", run.ID).Order("project_id").Find(&reports).Error; err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("报告数 = %d", len(reports))
	}
	if len(reports[1].MissingDatasets) != 1 || reports[1].MissingDatasets[0] != "star_counts" {
		t.Errorf("TCGA-LUAD报告 = %+v", reports[1])
	}
}

func TestRunSingleProject(t *testing.T) {
	ref := &stubReference{
		projects: []string{"TCGA-BRCA", "TCGA-LUAD"},
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {
				testutil.RawFileRecord("f-1", "Gene Expression Quantification", "STAR - Counts", "", "RNA-Seq", "S1", "Normal"),
			},
		},
	}
	target := &stubTarget{samples: map[string][]string{"TCGA-BRCA/star_counts": {"S1"}}}

	svc, _ := newTestService(t, ref, target)

	run, results, err := svc.Run(context.Background(), []string{"TCGA-BRCA"}, models.TriggerAPI)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// 指定项目时不展开全部项目列表
	if run.Mode != "single" || run.ProjectCount != 1 {
		t.Errorf("run = %+v", run)
	}
	if len(results) != 1 || results[0].ProjectID != "TCGA-BRCA" {
		t.Errorf("results = %+v", results)
	}
}

func TestRunPartialFailure(t *testing.T) {
	ref := &stubReference{
		files: map[string][]map[string]interface{}{
			"TCGA-GOOD": {
				testutil.RawFileRecord("f-1", "Gene Expression Quantification", "STAR - Counts", "", "RNA-Seq", "S1", "Normal"),
			},
		},
		errOn: map[string]error{"TCGA-BAD": errors.New("boom")},
	}
	target := &stubTarget{samples: map[string][]string{"TCGA-GOOD/star_counts": {"S1"}}}

	svc, tdb := newTestService(t, ref, target)

	run, _, err := svc.Run(context.Background(), []string{"TCGA-BAD", "TCGA-GOOD"}, models.TriggerCron)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// 部分失败仍视为完成
	if run.Status != models.RunStatusCompleted {
		t.Errorf("status = %s, 期望 completed", run.Status)
	}
	if run.FailedProjectCount != 1 {
		t.Errorf("FailedProjectCount = %d", run.FailedProjectCount)
	}

	// 失败项目的报告携带错误信息
	var report models.ProjectReport
	if err := tdb.DB.First(&report, "run_id = ? AND project_id = ?", run.ID, "TCGA-BAD").Error; err != nil {
		t.Fatal(err)
	}
	if report.Error == "" {
		t.Error("失败项目报告应携带错误信息")
	}
}

func TestRunAllFailed(t *testing.T) {
	ref := &stubReference{errOn: map[string]error{"TCGA-BAD": errors.New("boom")}}
	svc, _ := newTestService(t, ref, &stubTarget{})

	run, _, err := svc.Run(context.Background(), []string{"TCGA-BAD"}, models.TriggerAPI)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.Status != models.RunStatusFailed {
		t.Errorf("全部项目失败时status = %s, 期望 failed", run.Status)
	}
	if run.FinishedAt == nil {
		t.Error("结束时间应被记录")
	}
}

func TestGetRunsAndGetRun(t *testing.T) {
	ref := &stubReference{
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {
				testutil.RawFileRecord("f-1", "Gene Expression Quantification", "STAR - Counts", "", "RNA-Seq", "S1", "Normal"),
			},
		},
	}
	target := &stubTarget{samples: map[string][]string{"TCGA-BRCA/star_counts": {"S1"}}}
	svc, _ := newTestService(t, ref, target)

	run, _, err := svc.Run(context.Background(), []string{"TCGA-BRCA"}, models.TriggerAPI)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := svc.GetRuns(10)
	if err != nil {
		t.Fatalf("GetRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("runs = %+v", runs)
	}

	got, err := svc.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	// 项目报告随运行记录预加载
	if len(got.Reports) != 1 || got.Reports[0].ProjectID != "TCGA-BRCA" {
		t.Errorf("reports = %+v", got.Reports)
	}

	if _, err := svc.GetRun("no-such-id"); err == nil {
		t.Error("查询不存在的运行应返回错误")
	}
}
