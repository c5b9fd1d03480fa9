package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsadapter "github.com/diillson/pe-budget-dashboard-go/internal/adapter/driven/aws"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeS3 struct {
	objects map[string]string
	bucket  string
	key     string
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(params.Bucket)
	f.key = aws.ToString(params.Key)
	body, ok := f.objects[f.bucket+"/"+f.key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

type fakeProvider struct {
	client  *fakeS3
	profile string
	region  string
}

func (p *fakeProvider) S3Client(ctx context.Context, profile, region string) (awsadapter.S3API, error) {
	p.profile, p.region = profile, region
	return p.client, nil
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRows_JSON(t *testing.T) {
	path := writeInput(t, "rows.json", `[
  {"GROUP_TYPE": "HO", "GROUP_TOTAL": "HQ", "GROUPING_HEAD": "Finance", "GROUPING": "Accounting", "TOT_HC": 2, "TOT_PE": 1200.5},
  {"GROUP_TYPE": "HO", "GROUP_TOTAL": 0, "GROUPING_HEAD": "IT", "GROUPING": "Infra", "TOT_HC": "3"}
]`)

	rows, err := NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{URI: path})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "HO", rows[0]["GROUP_TYPE"])
	assert.Equal(t, 2.0, rows[0]["TOT_HC"])
	assert.Equal(t, 1200.5, rows[0]["TOT_PE"])
	assert.Equal(t, "0", rows[1].String("GROUP_TOTAL"))
	assert.Equal(t, "3", rows[1]["TOT_HC"])
}

func TestLoadRows_JSONMustBeArrayOfObjects(t *testing.T) {
	repo := NewSourceRepository(nil)

	for name, content := range map[string]string{
		"object.json":  `{"rows": []}`,
		"scalars.json": `[1, 2]`,
		"null.json":    `null`,
	} {
		_, err := repo.LoadRows(context.Background(), repository.SourceRequest{URI: writeInput(t, name, content)})
		assert.ErrorIs(t, err, hierarchy.ErrInvalidInput, name)
	}

	_, err := repo.LoadRows(context.Background(), repository.SourceRequest{URI: writeInput(t, "broken.json", `[{`)})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, hierarchy.ErrInvalidInput)
}

func TestLoadRows_CSV(t *testing.T) {
	path := writeInput(t, "rows.csv", "\ufeffGROUP_TYPE,GROUP_TOTAL,GROUPING_HEAD,GROUPING,TOT_HC,TOT_PE,NOTE\n"+
		"Store Area,0,North,Branch 01,4,\"1,250.75\",new\n"+
		",,,,,,\n"+
		"HO,HQ,Finance,Accounting,,300,\n")

	rows, err := NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{URI: path})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, entity.FlatRow{
		"GROUP_TYPE":    "Store Area",
		"GROUP_TOTAL":   "0",
		"GROUPING_HEAD": "North",
		"GROUPING":      "Branch 01",
		"TOT_HC":        4.0,
		"TOT_PE":        1250.75,
		"NOTE":          "new",
	}, rows[0])

	_, hasHC := rows[1]["TOT_HC"]
	assert.False(t, hasHC)
	assert.Equal(t, 300.0, rows[1]["TOT_PE"])
}

func TestLoadRows_CSVKeepsCodeColumnsAsText(t *testing.T) {
	path := writeInput(t, "codes.csv", "GROUP_TYPE,GROUP_TOTAL,GROUPING_HEAD,GROUPING,COST_CENTER,TOT_HC,TOT_PE\n"+
		"HO,HQ,Finance,Accounting,00123,2,0.5\n"+
		"HO,HQ,Finance,Treasury,00456,0,1000\n")

	rows, err := NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{URI: path})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "00123", rows[0]["COST_CENTER"])
	assert.Equal(t, "00456", rows[1]["COST_CENTER"])
	assert.Equal(t, 0.5, rows[0]["TOT_PE"])
	assert.Equal(t, 0.0, rows[1]["TOT_HC"])

	out, err := hierarchy.Aggregate(rows, hierarchy.Options{})
	require.NoError(t, err)
	_, summed := out[0].Fields["COST_CENTER"]
	assert.False(t, summed)

	rows, err = NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{
		URI:           path,
		NumericFields: []string{"TOT_PE"},
	})
	require.NoError(t, err)
	assert.Equal(t, "00123", rows[0]["COST_CENTER"])
	assert.Equal(t, "2", rows[0]["TOT_HC"])
	assert.Equal(t, 1000.0, rows[1]["TOT_PE"])
}

func TestDecodeRows_XLSXNumericFields(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"GROUP_TYPE", "EMPLOYEE_ID", "TOT_PE"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"HO", "0042", "12.5"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := DecodeRows(".xlsx", buf.Bytes(), []string{"TOT_PE"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0042", rows[0]["EMPLOYEE_ID"])
	assert.Equal(t, 12.5, rows[0]["TOT_PE"])
}

func TestLoadRows_YAML(t *testing.T) {
	path := writeInput(t, "rows.yaml", `- GROUP_TYPE: HO
  GROUP_TOTAL: HQ
  GROUPING_HEAD: Finance
  GROUPING: Accounting
  TOT_HC: 2
  TOT_PE: 1200.5
`)

	rows, err := NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{URI: path})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Finance", rows[0]["GROUPING_HEAD"])
	assert.Equal(t, 2, rows[0]["TOT_HC"])
	assert.Equal(t, 1200.5, rows[0]["TOT_PE"])

	_, err = NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{URI: writeInput(t, "map.yml", "GROUP_TYPE: HO\n")})
	assert.ErrorIs(t, err, hierarchy.ErrInvalidInput)
}

func TestLoadRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"GROUP_TYPE", "GROUP_TOTAL", "GROUPING_HEAD", "GROUPING", "TOT_HC", "TOT_PE"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Big Smart", "2027", "South", "Branch 7", 5, 980.25}))
	path := filepath.Join(t.TempDir(), "rows.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := NewSourceRepository(nil).LoadRows(context.Background(), repository.SourceRequest{URI: path})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Big Smart", rows[0]["GROUP_TYPE"])
	assert.Equal(t, "2027", rows[0]["GROUP_TOTAL"])
	assert.Equal(t, 5.0, rows[0]["TOT_HC"])
	assert.Equal(t, 980.25, rows[0]["TOT_PE"])
}

func TestLoadRows_S3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"budgets/2027/bjc.json": `[{"GROUP_TYPE": "HO", "TOT_PE": 10}]`,
	}}
	provider := &fakeProvider{client: client}
	repo := NewSourceRepository(provider)

	rows, err := repo.LoadRows(context.Background(), repository.SourceRequest{
		URI:        "s3://budgets/2027/bjc.json",
		AWSProfile: "finance",
		AWSRegion:  "ap-southeast-1",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "budgets", client.bucket)
	assert.Equal(t, "2027/bjc.json", client.key)
	assert.Equal(t, "finance", provider.profile)
	assert.Equal(t, "ap-southeast-1", provider.region)
	assert.Equal(t, 10.0, rows[0]["TOT_PE"])

	_, err = repo.LoadRows(context.Background(), repository.SourceRequest{URI: "s3://budgets/missing.json"})
	assert.ErrorContains(t, err, "NoSuchKey")

	_, err = repo.LoadRows(context.Background(), repository.SourceRequest{URI: "s3://budgets"})
	assert.ErrorIs(t, err, types.ErrUnsupportedSource)
}

func TestLoadRows_Errors(t *testing.T) {
	repo := NewSourceRepository(nil)
	ctx := context.Background()

	_, err := repo.LoadRows(ctx, repository.SourceRequest{})
	assert.ErrorIs(t, err, types.ErrNoInputSource)

	_, err = repo.LoadRows(ctx, repository.SourceRequest{URI: "https://example.com/rows.json"})
	assert.ErrorIs(t, err, types.ErrUnsupportedSource)

	_, err = repo.LoadRows(ctx, repository.SourceRequest{URI: "s3://bucket/rows.json"})
	assert.ErrorIs(t, err, types.ErrUnsupportedSource)

	_, err = repo.LoadRows(ctx, repository.SourceRequest{URI: writeInput(t, "rows.txt", "x")})
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)

	_, err = repo.LoadRows(ctx, repository.SourceRequest{URI: filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
