package analyzer

// Section is one named group of analysis questions, asked in order.
type Section struct {
	Key       string
	Title     string
	Questions []string
}

// DefaultSections returns the canonical M&A tax risk battery: eight
// sections covering audit history through contingency distributions.
func DefaultSections() []Section {
	return []Section{
		{
			Key:   "audit_outcomes",
			Title: "Tax Audit Outcomes & Indicators",
			Questions: []string{
				"What are the tax audit outcomes and indicators mentioned?",
				"Are there any hard labels or historical audit findings?",
				"What is the audit risk score?",
			},
		},
		{
			Key:   "business_analysis",
			Title: "Business Analysis for VC/PE",
			Questions: []string{
				"What is the effective tax rate mentioned?",
				"What are the tax-adjusted returns or IRR mentioned?",
				"What scenarios are analyzed (base case, P75, P90, P95)?",
				"What are the key tax metrics and financial figures?",
			},
		},
		{
			Key:   "escalation_flags",
			Title: "Escalation Flags & Risk Drivers",
			Questions: []string{
				"What are the critical tax escalation flags or risk drivers?",
				"Are there any material tax issues requiring partner attention?",
			},
		},
		{
			Key:   "executive_summary",
			Title: "Executive Summary & Key Takeaways",
			Questions: []string{
				"Provide a comprehensive executive summary of the key tax takeaways",
				"What are the main tax risks and opportunities?",
				"What are the quantified risk insights?",
			},
		},
		{
			Key:   "balance_sheet",
			Title: "Balance Sheet & Tax Metrics",
			Questions: []string{
				"What balance sheet and tax metrics are mentioned?",
				"What tax liabilities or assets are disclosed?",
			},
		},
		{
			Key:   "transaction_structure",
			Title: "Transaction Structure",
			Questions: []string{
				"What is the transaction structure (merger, acquisition, deal type)?",
				"What jurisdictions are involved?",
			},
		},
		{
			Key:   "investment_analysis",
			Title: "Integrated Investment Analysis",
			Questions: []string{
				"What is the share class IRR or tax-adjusted IRR?",
				"What investment recommendations are provided?",
				"What are the reserve recommendations?",
			},
		},
		{
			Key:   "tax_contingencies",
			Title: "Tax Contingency Distribution",
			Questions: []string{
				"What tax contingencies or reserves are mentioned?",
				"What is the expected tax contingency distribution (P50, P75, P90, P95)?",
				"What methodologies are used (Log-Normal, Conservative, Triangular)?",
			},
		},
	}
}
