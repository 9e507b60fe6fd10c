package payload

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rbc-easyrent/signiflow-order-service/internal/config"
	flowerrors "github.com/rbc-easyrent/signiflow-order-service/internal/errors"
	"github.com/rbc-easyrent/signiflow-order-service/internal/models"
	"github.com/rbc-easyrent/signiflow-order-service/internal/pdf"
	"github.com/rbc-easyrent/signiflow-order-service/internal/validator"
)

// Builder assembles the FullWorkflow submission request from an order
// snapshot. Construction is deterministic: the same order, configuration,
// token and document bytes always produce a structurally identical request.
type Builder struct {
	pdfs pdf.Source
}

func NewBuilder(pdfs pdf.Source) *Builder {
	return &Builder{pdfs: pdfs}
}

// Build produces the submission request in one of two modes: direct-upload
// when a PDF template is configured (takes precedence), template-reference
// when a workflow/portfolio id is configured.
func (b *Builder) Build(ctx context.Context, order *models.Order, cfg *config.Config, token models.TokenObject) (*models.FullWorkflowRequest, error) {
	if order.Email == "" {
		return nil, flowerrors.Validation("Customer email missing. Cannot send workflow.")
	}

	if !cfg.DirectUpload() && cfg.WorkflowID == "" {
		return nil, flowerrors.Configuration("Either Workflow ID or PDF template paths must be configured.")
	}

	req := &models.FullWorkflowRequest{
		UseAutoTagsField:        1,
		SendWorkflowEmailsField: 1,
		SendFirstEmailField:     1,
		DocNameField:            fmt.Sprintf("EasyRent Agreement - Order #%d", order.ID),
		TokenField:              token,
		TagValuesField:          TagValues(order),
		WorkflowUsersListField: []models.WorkflowUser{
			{
				SignatureTypeField:      1,
				UserFullNameField:       order.ContactName(),
				EmailAddressField:       order.Email,
				WorkflowUserFieldsField: []any{},
			},
		},
	}

	if cfg.DirectUpload() {
		req.Mode = models.ModeDirectUpload
		doc, err := b.resolveDocument(ctx, cfg)
		if err != nil {
			return nil, err
		}
		req.DocField = base64.StdEncoding.EncodeToString(doc)
		zap.L().Info("document encoded for direct upload",
			zap.Int64("order_id", order.ID),
			zap.Int("encoded_len", len(req.DocField)),
		)
		return req, nil
	}

	req.Mode = models.ModeTemplateReference
	workflowID, ok := validator.NumericWorkflowID(cfg.WorkflowID)
	if !ok {
		return nil, flowerrors.Validation("Workflow ID must be numeric. Current value: " + cfg.WorkflowID)
	}
	req.PortfolioIDField = workflowID

	if validator.IsUsablePlaceholderEmail(cfg.PlaceholderEmail) {
		req.PlaceholderInfoListField = []models.PlaceholderInfo{
			{UserEmailField: cfg.PlaceholderEmail},
		}
	}

	zap.L().Info("template workflow prepared",
		zap.Int64("order_id", order.ID),
		zap.Int("portfolio_id", req.PortfolioIDField),
		zap.Strings("tags", TagNames(req.TagValuesField)),
	)
	return req, nil
}

func (b *Builder) resolveDocument(ctx context.Context, cfg *config.Config) ([]byte, error) {
	first, err := b.pdfs.Resolve(ctx, cfg.PDFTemplate1)
	if err != nil {
		return nil, err
	}
	if cfg.PDFTemplate2 == "" {
		return first, nil
	}

	second, err := b.pdfs.Resolve(ctx, cfg.PDFTemplate2)
	if err != nil {
		return nil, err
	}
	return pdf.Merge(first, second), nil
}

// TagValues populates the tag-value map the remote service injects into the
// document at render time. Keys match the tag names in the PDF templates.
func TagValues(order *models.Order) map[string]string {
	names := make([]string, 0, len(order.Items))
	quantity := 0
	monthlyRent := decimal.Zero

	for _, item := range order.Items {
		names = append(names, item.Name)
		quantity += item.Quantity

		// Per-item unit price, not line total over aggregate quantity.
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		monthlyRent = monthlyRent.Add(item.Total.Div(decimal.NewFromInt(int64(qty))))
	}

	return map[string]string{
		"renter_legal_name":     order.LegalName(),
		"abn":                   order.ABN,
		"contact_name":          order.ContactName(),
		"email":                 order.Email,
		"phone":                 order.Phone,
		"installation_address":  order.InstallationAddress,
		"installation_state":    order.InstallationState,
		"installation_postcode": order.InstallationPostcode,
		"equipment_description": strings.Join(names, ", "),
		"quantity":              strconv.Itoa(quantity),
		"rental_term":           "",
		"monthly_rent":          monthlyRent.StringFixed(2),
		"gst_amount":            order.TotalTax.StringFixed(2),
		"total_monthly_payment": order.Total.StringFixed(2),
		"terms_accepted":        "Yes",
		"order_id":              strconv.FormatInt(order.ID, 10),
	}
}

// TagNames lists the tag keys in stable order; used for logging only.
func TagNames(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
