package recon

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"recon-service/testutil"
)

// fakeReference 内存参考清单
type fakeReference struct {
	projects []string
	files    map[string][]map[string]interface{}
	errOn    map[string]error
	listErr  error
}

func (f *fakeReference) ListProjects(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.projects, nil
}

func (f *fakeReference) ListFiles(ctx context.Context, projectID string) ([]map[string]interface{}, error) {
	if err := f.errOn[projectID]; err != nil {
		return nil, err
	}
	return f.files[projectID], nil
}

// fakeTarget 内存目标清单,samples键为 projectID/datasetName
type fakeTarget struct {
	samples map[string][]string
	errOn   map[string]error
}

func (f *fakeTarget) DatasetSamples(ctx context.Context, projectID, datasetName string) ([]string, error) {
	key := projectID + "/" + datasetName
	if err := f.errOn[key]; err != nil {
		return nil, err
	}
	return f.samples[key], nil
}

func starCountsFile(fileID, submitterID string) map[string]interface{} {
	return testutil.RawFileRecord(fileID, "Gene Expression Quantification", "STAR - Counts", "", "RNA-Seq", submitterID, "Normal")
}

func TestReconcileProjectHappyPath(t *testing.T) {
	ref := &fakeReference{
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {
				starCountsFile("f-1", "S1"),
				starCountsFile("f-2", "S2"),
			},
		},
	}
	target := &fakeTarget{
		samples: map[string][]string{
			"TCGA-BRCA/star_counts": {"S1", "S2"},
		},
	}

	engine := NewEngine(ref, target, nil, 1)
	result := engine.ReconcileProject(context.Background(), "TCGA-BRCA")

	if result.Err != nil {
		t.Fatalf("对账不应失败: %v", result.Err)
	}
	if len(result.MissingDatasets) != 0 || len(result.WrongCountDatasets) != 0 {
		t.Errorf("双方一致不应有分歧: %+v", result)
	}
	if ids := result.MissingIDs["star_counts"]; len(ids) != 0 {
		t.Errorf("MissingIDs = %v, 期望空", ids)
	}
}

func TestReconcileProjectMissingDataset(t *testing.T) {
	ref := &fakeReference{
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {
				starCountsFile("f-1", "S1"),
				starCountsFile("f-2", "S2"),
			},
		},
	}
	// 目标侧对star_counts返回空集,数据集整体缺失
	target := &fakeTarget{samples: map[string][]string{}}

	engine := NewEngine(ref, target, nil, 1)
	result := engine.ReconcileProject(context.Background(), "TCGA-BRCA")

	if result.Err != nil {
		t.Fatalf("对账不应失败: %v", result.Err)
	}
	if !reflect.DeepEqual(result.MissingDatasets, []string{"star_counts"}) {
		t.Errorf("MissingDatasets = %v", result.MissingDatasets)
	}
	// 缺失数据集的成员并入未匹配池
	if !reflect.DeepEqual(result.UnmatchedIDs, []string{"S1", "S2"}) {
		t.Errorf("UnmatchedIDs = %v, 期望 [S1 S2]", result.UnmatchedIDs)
	}
	if len(result.MissingDatatypes) != 1 {
		t.Errorf("MissingDatatypes = %v, 期望1条去重签名", result.MissingDatatypes)
	}
}

func TestReconcileProjectUnmatchedRecords(t *testing.T) {
	ref := &fakeReference{
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {
				testutil.RawFileRecord("f-1", "Unknown Type", "Some Workflow", "", "WGS", "S1", "Normal"),
				testutil.RawFileRecord("f-2", "Unknown Type", "Some Workflow", "", "WGS", "S2", "Normal"),
			},
		},
	}
	target := &fakeTarget{samples: map[string][]string{}}

	engine := NewEngine(ref, target, nil, 1)
	result := engine.ReconcileProject(context.Background(), "TCGA-BRCA")

	if result.Err != nil {
		t.Fatalf("对账不应失败: %v", result.Err)
	}
	// 未匹配签名按元数据去重,两条记录只产出一条
	want := []string{"Unknown Type/Some Workflow/WGS"}
	if !reflect.DeepEqual(result.MissingDatatypes, want) {
		t.Errorf("MissingDatatypes = %v, 期望 %v", result.MissingDatatypes, want)
	}
	if !reflect.DeepEqual(result.UnmatchedIDs, []string{"S1", "S2"}) {
		t.Errorf("UnmatchedIDs = %v", result.UnmatchedIDs)
	}
}

func TestReconcileProjectReferenceError(t *testing.T) {
	refErr := errors.New("connection refused")
	ref := &fakeReference{errOn: map[string]error{"TCGA-BRCA": refErr}}
	engine := NewEngine(ref, &fakeTarget{}, nil, 1)

	result := engine.ReconcileProject(context.Background(), "TCGA-BRCA")
	if result.Err == nil {
		t.Fatal("参考清单失败应中止项目")
	}
	if !errors.Is(result.Err, refErr) {
		t.Errorf("错误应保留底层原因: %v", result.Err)
	}
}

func TestReconcileProjectTargetError(t *testing.T) {
	ref := &fakeReference{
		files: map[string][]map[string]interface{}{
			"TCGA-BRCA": {starCountsFile("f-1", "S1")},
		},
	}
	targetErr := errors.New("hub unavailable")
	target := &fakeTarget{errOn: map[string]error{"TCGA-BRCA/star_counts": targetErr}}

	engine := NewEngine(ref, target, nil, 1)
	result := engine.ReconcileProject(context.Background(), "TCGA-BRCA")
	if result.Err == nil || !errors.Is(result.Err, targetErr) {
		t.Errorf("目标清单失败应中止项目并保留原因: %v", result.Err)
	}
}

func TestReconcileProjectsIsolation(t *testing.T) {
	// 单项目失败不影响其他项目
	ref := &fakeReference{
		files: map[string][]map[string]interface{}{
			"TCGA-GOOD": {starCountsFile("f-1", "S1")},
		},
		errOn: map[string]error{"TCGA-BAD": errors.New("boom")},
	}
	target := &fakeTarget{
		samples: map[string][]string{"TCGA-GOOD/star_counts": {"S1"}},
	}

	engine := NewEngine(ref, target, nil, 2)
	results := engine.ReconcileProjects(context.Background(), []string{"TCGA-BAD", "TCGA-GOOD"})

	if len(results) != 2 {
		t.Fatalf("结果数 = %d", len(results))
	}
	if results[0].Err == nil {
		t.Error("失败项目应携带错误")
	}
	if results[1].Err != nil {
		t.Errorf("正常项目不应受影响: %v", results[1].Err)
	}
}

func TestReconcileProjectsOrderStable(t *testing.T) {
	// 并行执行时结果顺序仍与输入一致
	projects := make([]string, 8)
	files := make(map[string][]map[string]interface{})
	samples := make(map[string][]string)
	for i := range projects {
		pid := fmt.Sprintf("TCGA-%02d", i)
		projects[i] = pid
		files[pid] = []map[string]interface{}{starCountsFile("f-1", "S1")}
		samples[pid+"/star_counts"] = []string{"S1"}
	}

	engine := NewEngine(&fakeReference{files: files}, &fakeTarget{samples: samples}, nil, 4)
	results := engine.ReconcileProjects(context.Background(), projects)

	for i, r := range results {
		if r.ProjectID != projects[i] {
			t.Errorf("位置%d结果项目 = %s, 期望 %s", i, r.ProjectID, projects[i])
		}
	}
}

func TestListProjects(t *testing.T) {
	ref := &fakeReference{projects: []string{"TCGA-BRCA", "TCGA-LUAD"}}
	engine := NewEngine(ref, &fakeTarget{}, nil, 1)

	projects, err := engine.ListProjects(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(projects, []string{"TCGA-BRCA", "TCGA-LUAD"}) {
		t.Errorf("项目列表 = %v", projects)
	}

	ref.listErr = errors.New("unavailable")
	if _, err := engine.ListProjects(context.Background()); err == nil {
		t.Error("列表失败应返回错误")
	}
}
