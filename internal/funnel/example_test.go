package funnel

import "fmt"

// ExampleCompute projects the default campaign plan.
func ExampleCompute() {
	report, err := Compute(Input{
		DesiredRevenue:         150000,
		MediaBudget:            25000,
		AverageTicket:          247.90,
		BaselineConversionRate: 4,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, row := range report.Scenarios {
		fmt.Printf("%-11s rate=%.2f%% sales=%d leads=%d cpl=%.2f\n",
			row.Scenario, row.ConversionRatePct, row.RequiredSales, row.RequiredLeads, row.MaxCPL)
	}
	fmt.Printf("ROAS %.2fx\n", report.Summary.ROAS)
	// Output:
	// Pessimistic rate=2.80% sales=606 leads=21643 cpl=1.16
	// Realistic   rate=4.00% sales=606 leads=15150 cpl=1.65
	// Optimistic  rate=5.20% sales=606 leads=11654 cpl=2.15
	// ROAS 6.00x
}

// ExampleCompute_invalidTicket shows the error returned for a zero ticket.
func ExampleCompute_invalidTicket() {
	_, err := Compute(Input{DesiredRevenue: 150000, MediaBudget: 25000, AverageTicket: 0, BaselineConversionRate: 4})
	fmt.Println(err)
	// Output:
	// average_ticket must be positive
}
