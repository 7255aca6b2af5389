package formdesk

import (
	"context"
	"fmt"

	"github.com/G-Node/formdesk/formdesk/db"
	"github.com/G-Node/formdesk/formdesk/form"
	"github.com/G-Node/formdesk/formdesk/layout"
)

// PurchaseRequestName is the name of the sample form created by
// SeedPurchaseRequest.
const PurchaseRequestName = "purchase-request"

func seedSpec(label string, t form.FieldType, required bool) form.Spec {
	return form.Spec{Label: label, Type: t, Required: required}
}

// purchaseRequestFields are the fields of the sample form in display order.
func purchaseRequestFields() []form.Spec {
	priority := seedSpec("Priority Level", form.Select, true)
	priority.SelectOptions = []string{"Low", "Medium", "High", "Critical"}
	internalOrder := seedSpec("Internal Order", form.Text, false)
	internalOrder.Description = "Internal order number (if applicable)"
	documents := seedSpec("Supporting Documents", form.File, false)
	maxSize := int64(10 << 20)
	documents.MaxFileSize = &maxSize
	documents.AllowedFileTypes = []string{".pdf", ".docx", "image/*"}

	return []form.Spec{
		seedSpec("Request Title", form.Text, true),
		seedSpec("Department", form.Text, true),
		seedSpec("Cost Center", form.Text, true),
		seedSpec("Required Delivery Date", form.Date, true),
		seedSpec("Delivery Address", form.Text, true),
		priority,
		seedSpec("Budget Code", form.Text, true),

		seedSpec("Requester Name", form.Text, true),
		seedSpec("Employee ID", form.Text, true),
		seedSpec("Contact Number", form.Phone, true),

		seedSpec("GL Account", form.Text, true),
		seedSpec("Cost Object", form.Text, true),
		internalOrder,
		seedSpec("WBS Element", form.Text, false),

		seedSpec("Item Description", form.Text, true),
		seedSpec("Quantity", form.Number, true),
		seedSpec("Estimated Price", form.Number, true),
		seedSpec("Unit", form.Text, true),
		seedSpec("Technical Specifications", form.TextArea, false),

		seedSpec("Notes", form.TextArea, false),
		documents,
	}
}

// purchaseRequestGroups partitions the sample fields, by position, into
// the saved layout.
var purchaseRequestGroups = []struct {
	id, title  string
	columns    int
	start, end int
}{
	{"request-details", "Request Details", 2, 0, 7},
	{"requester-info", "Requester Information", 3, 7, 10},
	{"erp-details", "ERP Details", 2, 10, 14},
	{"item-details", "Item Details", 2, 14, 19},
	{"additional-info", "Additional Information", 1, 19, 21},
}

// SeedPurchaseRequest creates the sample purchase request form with its
// fields and saved five group layout. An existing form of the same name is
// reported as a DuplicateNameError.
func SeedPurchaseRequest(ctx context.Context, conn *db.Connection) (*db.Form, error) {
	f, err := conn.CreateForm(ctx, PurchaseRequestName, "Request the purchase of goods or services")
	if err != nil {
		return nil, err
	}
	specs := purchaseRequestFields()
	ids := make([]int64, len(specs))
	for idx, spec := range specs {
		spec.Order = idx + 1
		field, err := conn.AddField(ctx, f.ID, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to add field %q: %w", spec.Label, err)
		}
		ids[idx] = field.ID
	}

	var l layout.Layout
	for _, g := range purchaseRequestGroups {
		l.Groups = append(l.Groups, layout.Group{
			ID:       g.id,
			Title:    g.title,
			Columns:  g.columns,
			Spacing:  layout.DefaultSpacing,
			FieldIDs: append([]int64(nil), ids[g.start:g.end]...),
		})
	}
	if err := conn.SaveLayout(ctx, f.ID, l); err != nil {
		return nil, fmt.Errorf("failed to save layout: %w", err)
	}
	return conn.GetFormByID(ctx, f.ID, "")
}
