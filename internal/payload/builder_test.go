package payload

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbc-easyrent/signiflow-order-service/internal/config"
	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
)

// fakeSource resolves references from a map.
type fakeSource struct {
	docs map[string][]byte
}

func (f *fakeSource) Resolve(ctx context.Context, ref string) ([]byte, error) {
	data, ok := f.docs[ref]
	if !ok {
		return nil, flowerrors.Pdf("PDF file not readable: "+ref, nil)
	}
	return data, nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:        42,
		FirstName: "Jane",
		LastName:  "Citizen",
		Email:     "a@b.com",
		Phone:     "0400 000 000",
		ABN:       "51 824 753 556",

		InstallationAddress:  "1 Example St",
		InstallationState:    "NSW",
		InstallationPostcode: "2000",

		Items: []models.LineItem{
			{Name: "Coffee Machine", Quantity: 2, Total: decimal.NewFromInt(220)},
			{Name: "Grinder", Quantity: 1, Total: decimal.NewFromInt(80)},
		},
		TotalTax: decimal.NewFromFloat(27.27),
		Total:    decimal.NewFromInt(300),

		SigningStatus: models.SigningPending,
	}
}

func TestBuildTemplateReferenceScenario(t *testing.T) {
	cfg := &config.Config{WorkflowID: "2301"}
	builder := NewBuilder(&fakeSource{})

	req, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{TokenField: "abc123"})
	require.NoError(t, err)

	assert.Equal(t, models.ModeTemplateReference, req.Mode)
	assert.Equal(t, 2301, req.PortfolioIDField)
	assert.Empty(t, req.DocField)
	require.Len(t, req.WorkflowUsersListField, 1)
	assert.Equal(t, "a@b.com", req.WorkflowUsersListField[0].EmailAddressField)
	assert.Equal(t, "Jane Citizen", req.WorkflowUsersListField[0].UserFullNameField)

	// Default signing flags: no proxy, no auto-sign, empty placements.
	signer := req.WorkflowUsersListField[0]
	assert.Zero(t, signer.AllowProxyField)
	assert.Zero(t, signer.AutoSignField)
	assert.Equal(t, 1, signer.SignatureTypeField)
	assert.Empty(t, signer.WorkflowUserFieldsField)

	// Auto-tags and notification emails always requested.
	assert.Equal(t, 1, req.UseAutoTagsField)
	assert.Equal(t, 1, req.SendWorkflowEmailsField)
	assert.Equal(t, 1, req.SendFirstEmailField)

	assert.Equal(t, "EasyRent Agreement - Order #42", req.DocNameField)
}

func TestBuildTagValues(t *testing.T) {
	cfg := &config.Config{WorkflowID: "2301"}
	builder := NewBuilder(&fakeSource{})

	req, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{TokenField: "abc123"})
	require.NoError(t, err)

	tags := req.TagValuesField
	assert.Equal(t, "Jane Citizen", tags["renter_legal_name"])
	assert.Equal(t, "Jane Citizen", tags["contact_name"])
	assert.Equal(t, "51 824 753 556", tags["abn"])
	assert.Equal(t, "a@b.com", tags["email"])
	assert.Equal(t, "Coffee Machine, Grinder", tags["equipment_description"])
	assert.Equal(t, "3", tags["quantity"])

	// Per-item unit price sum: 220/2 + 80/1, not 300/3.
	assert.Equal(t, "190.00", tags["monthly_rent"])
	assert.Equal(t, "27.27", tags["gst_amount"])
	assert.Equal(t, "300.00", tags["total_monthly_payment"])
	assert.Equal(t, "Yes", tags["terms_accepted"])
	assert.Equal(t, "42", tags["order_id"])
	assert.Equal(t, "", tags["rental_term"])
}

func TestBuildLegalNameFallsBackFromCompany(t *testing.T) {
	order := sampleOrder()
	order.Company = "Citizen Holdings"
	builder := NewBuilder(&fakeSource{})

	req, err := builder.Build(context.Background(), order, &config.Config{WorkflowID: "2301"}, models.TokenObject{})
	require.NoError(t, err)
	assert.Equal(t, "Citizen Holdings", req.TagValuesField["renter_legal_name"])
	assert.Equal(t, "Jane Citizen", req.TagValuesField["contact_name"])
}

func TestBuildDeterministic(t *testing.T) {
	cfg := &config.Config{WorkflowID: "2301", PlaceholderEmail: "signer@rbceasyrent.com.au"}
	builder := NewBuilder(&fakeSource{})
	token := models.TokenObject{TokenField: "abc123", TokenExpiryField: "/Date(9999999999000+0000)/"}

	first, err := builder.Build(context.Background(), sampleOrder(), cfg, token)
	require.NoError(t, err)
	second, err := builder.Build(context.Background(), sampleOrder(), cfg, token)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildMissingEmail(t *testing.T) {
	order := sampleOrder()
	order.Email = ""
	builder := NewBuilder(&fakeSource{})

	_, err := builder.Build(context.Background(), order, &config.Config{WorkflowID: "2301"}, models.TokenObject{})
	require.Error(t, err)
	kind, _ := flowerrors.KindOf(err)
	assert.Equal(t, flowerrors.KindValidation, kind)
}

func TestBuildNeitherConfigured(t *testing.T) {
	builder := NewBuilder(&fakeSource{})
	_, err := builder.Build(context.Background(), sampleOrder(), &config.Config{}, models.TokenObject{})
	require.Error(t, err)
	kind, _ := flowerrors.KindOf(err)
	assert.Equal(t, flowerrors.KindConfiguration, kind)
}

func TestBuildNonNumericWorkflowID(t *testing.T) {
	builder := NewBuilder(&fakeSource{})
	_, err := builder.Build(context.Background(), sampleOrder(), &config.Config{WorkflowID: "workflow-east"}, models.TokenObject{})
	require.Error(t, err)
	kind, _ := flowerrors.KindOf(err)
	assert.Equal(t, flowerrors.KindValidation, kind)
	assert.Contains(t, flowerrors.MessageOf(err), "workflow-east")
}

func TestBuildDirectUploadSingleTemplate(t *testing.T) {
	cfg := &config.Config{PDFTemplate1: "/srv/templates/agreement.pdf"}
	builder := NewBuilder(&fakeSource{docs: map[string][]byte{
		"/srv/templates/agreement.pdf": []byte("%PDF-agreement"),
	}})

	req, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{TokenField: "abc123"})
	require.NoError(t, err)

	assert.Equal(t, models.ModeDirectUpload, req.Mode)
	assert.Zero(t, req.PortfolioIDField)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-agreement")), req.DocField)
	require.Len(t, req.WorkflowUsersListField, 1)
	assert.NotEmpty(t, req.TagValuesField)
}

func TestBuildDirectUploadMergesTwoTemplates(t *testing.T) {
	cfg := &config.Config{
		PDFTemplate1: "/srv/templates/a.pdf",
		PDFTemplate2: "/srv/templates/b.pdf",
	}
	builder := NewBuilder(&fakeSource{docs: map[string][]byte{
		"/srv/templates/a.pdf": []byte("%PDF-A"),
		"/srv/templates/b.pdf": []byte("junkHEADER%PDF-B"),
	}})

	req, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(req.DocField)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-A\n%PDF-B", string(decoded))
}

func TestBuildDirectUploadTakesPrecedenceOverWorkflowID(t *testing.T) {
	cfg := &config.Config{
		WorkflowID:   "2301",
		PDFTemplate1: "/srv/templates/a.pdf",
	}
	builder := NewBuilder(&fakeSource{docs: map[string][]byte{
		"/srv/templates/a.pdf": []byte("%PDF-A"),
	}})

	req, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{})
	require.NoError(t, err)
	assert.Equal(t, models.ModeDirectUpload, req.Mode)
	assert.Zero(t, req.PortfolioIDField)
}

func TestBuildDirectUploadUnreadableTemplate(t *testing.T) {
	cfg := &config.Config{PDFTemplate1: "/srv/templates/missing.pdf"}
	builder := NewBuilder(&fakeSource{})

	_, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{})
	require.Error(t, err)
	kind, _ := flowerrors.KindOf(err)
	assert.Equal(t, flowerrors.KindPdf, kind)
}

func TestBuildPlaceholderEmailFiltering(t *testing.T) {
	cases := []struct {
		email    string
		attached bool
	}{
		{"signer@rbceasyrent.com.au", true},
		{"placeholder@rbceasyrent.com.au", false},
		{"user@yourdomain.com", false},
		{"not-an-email", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.email), func(t *testing.T) {
			cfg := &config.Config{WorkflowID: "2301", PlaceholderEmail: tc.email}
			builder := NewBuilder(&fakeSource{})

			req, err := builder.Build(context.Background(), sampleOrder(), cfg, models.TokenObject{})
			require.NoError(t, err)

			if tc.attached {
				require.Len(t, req.PlaceholderInfoListField, 1)
				assert.Equal(t, tc.email, req.PlaceholderInfoListField[0].UserEmailField)
			} else {
				assert.Empty(t, req.PlaceholderInfoListField)
			}
		})
	}
}

func TestTagValuesZeroQuantityGuard(t *testing.T) {
	order := sampleOrder()
	order.Items = []models.LineItem{{Name: "Freebie", Quantity: 0, Total: decimal.NewFromInt(50)}}

	tags := TagValues(order)
	assert.Equal(t, "50.00", tags["monthly_rent"])
	assert.Equal(t, "0", tags["quantity"])
}
