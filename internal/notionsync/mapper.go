package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/cashbook/internal/domain"
)

// Property names of the mirrored transactions database.
const (
	propName          = "Name"
	propTransactionID = "Transaction ID"
	propType          = "Type"
	propFlow          = "Flow"
	propAmount        = "Amount"
	propDate          = "Date"
	propDescription   = "Description"
	propSeller        = "Seller"
	propReceiverBank  = "Receiver Bank"
	propCreatedAt     = "Created At"
)

// TransactionToNotionProperties converts a ledger transaction to Notion
// properties. Amount keeps its sign; Flow says whether it is money in or out.
func TransactionToNotionProperties(tx domain.Transaction) notionapi.Properties {
	amount, _ := tx.Amount.Round(2).Float64()

	flow := "Credit"
	if tx.IsDebit() {
		flow = "Debit"
	}

	props := notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: richText(tx.PartyName),
		},
		propTransactionID: notionapi.RichTextProperty{
			RichText: richText(tx.ID),
		},
		propType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		propFlow: notionapi.SelectProperty{
			Select: notionapi.Option{Name: flow},
		},
		propAmount: notionapi.NumberProperty{
			Number: amount,
		},
		propDate: dateProperty(time.Date(tx.Date.Year, tx.Date.Month, tx.Date.Day, 0, 0, 0, 0, time.UTC)),
	}

	if tx.Description != "" {
		props[propDescription] = notionapi.RichTextProperty{RichText: richText(tx.Description)}
	}
	if tx.SellerName != "" {
		props[propSeller] = notionapi.RichTextProperty{RichText: richText(tx.SellerName)}
	}
	if tx.ReceiverBank != "" {
		props[propReceiverBank] = notionapi.RichTextProperty{RichText: richText(tx.ReceiverBank)}
	}
	if !tx.CreatedAt.IsZero() {
		props[propCreatedAt] = dateProperty(tx.CreatedAt)
	}

	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &d},
	}
}

// extractTransactionID reads the Transaction ID property of a page, or "".
func extractTransactionID(page notionapi.Page) string {
	switch prop := page.Properties[propTransactionID].(type) {
	case *notionapi.RichTextProperty:
		return plainText(prop.RichText)
	case notionapi.RichTextProperty:
		return plainText(prop.RichText)
	}
	return ""
}

// extractType reads the Type select of a page, or "".
func extractType(page notionapi.Page) string {
	switch prop := page.Properties[propType].(type) {
	case *notionapi.SelectProperty:
		return prop.Select.Name
	case notionapi.SelectProperty:
		return prop.Select.Name
	}
	return ""
}

func plainText(rt []notionapi.RichText) string {
	if len(rt) == 0 {
		return ""
	}
	if rt[0].PlainText != "" {
		return rt[0].PlainText
	}
	if rt[0].Text != nil {
		return rt[0].Text.Content
	}
	return ""
}
