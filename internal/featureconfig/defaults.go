package featureconfig

// Default returns the built-in Russell 3000 pipeline definition. A YAML file
// passed with --config overrides it wholesale; there is no merging.
func Default() *Config {
	return &Config{
		Meta: Meta{
			Name:        "russell3000_fundamentals",
			Version:     "1.0.0",
			Description: "Quarterly fundamentals + macro features for the Russell 3000 universe",
		},
		Window: Window{
			Quarters: 5,
			End:      "auto",
		},
		Universe: Universe{
			AssetClasses: []string{"Equity"},
			Exchanges:    []string{"NASDAQ", "New York Stock Exchange Inc."},
		},
		LineItems: defaultLineItems(),
		Derived: []Derived{
			// Some issuers report no tax row at all; the provision is then
			// approximated from pretax income and net income.
			{Name: "IncomeTaxExpense", Minuend: "PretaxIncome", Subtrahend: "NetIncome"},
		},
		Macro: []MacroSeries{
			{Name: "GDP", Series: "GDP"},
			{Name: "GDPReal", Series: "GDPC1"},
			{Name: "Unemployment", Series: "UNRATE"},
			{Name: "InterestRate", Series: "FEDFUNDS"},
			{Name: "IndustrialProd", Series: "INDPRO"},
			{Name: "Inflation", Series: "CPIAUCSL"},
		},
		MarketCap: MarketCap{
			// MarketValue comes from the holdings file in thousands of USD,
			// so the usual $50M/$250M/$2B/$10B/$200B cutoffs shift down by 1e3.
			Source: "MarketValue",
			Bins:   []float64{0, 50e3, 250e3, 2e6, 10e6, 200e6},
			Labels: []string{"Nano-Cap", "Micro-Cap", "Small-Cap", "Mid-Cap", "Large-Cap", "Mega-Cap"},
		},
		Clean: Clean{
			DropColumns:      []string{"YahooSymbol", "Currency", "AssetClass"},
			DropItemPrefixes: []string{"ShortTermDebtOrCurrentLiab"},
			RequiredNonzero:  []string{"Revenue", "TotalAssets", "TotalEquity", "CurrentLiabilities"},
			OneHot:           []string{"Sector", "MarketCap", "Exchange"},
		},
		Split: Split{
			TestSize:      0.2,
			Seed:          6,
			MinStratum:    2,
			TargetQuarter: "auto",
		},
		Impute: Impute{
			Statistic: "median",
			MinGroup:  2,
		},
		KPIs: []KPI{
			{Name: "GrossMargin", Numerator: "Revenue", Subtract: "CostOfRevenue", Denominator: "Revenue"},
			{Name: "OperatingMargin", Numerator: "OperatingIncome", Denominator: "Revenue"},
			{Name: "NetMargin", Numerator: "NetIncome", Denominator: "Revenue"},
			{Name: "ROA", Numerator: "NetIncome", Denominator: "TotalAssets"},
			{Name: "ROE", Numerator: "NetIncome", Denominator: "TotalEquity"},
			{Name: "CurrentRatio", Numerator: "CurrentAssets", Denominator: "CurrentLiabilities"},
			{Name: "DebtToEquity", Numerator: "TotalDebt", Denominator: "TotalEquity"},
			{Name: "InterestCoverage", Numerator: "OperatingIncome", Denominator: "InterestExpense"},
			{Name: "OCFMargin", Numerator: "CashFromOps", Denominator: "Revenue"},
			{Name: "CapexIntensity", Numerator: "CapitalExpenditure", Denominator: "Revenue"},
		},
		QoQ: QoQ{
			IncludeMacro: true,
			IncludeKPIs:  false,
		},
	}
}

// defaultLineItems lists every fundamental pulled per quarter. The candidate
// labels cover the naming variants the vendor actually ships; keywords widen
// the search for rows whose labels drift too far for exact matching.
func defaultLineItems() []LineItem {
	return []LineItem{
		{
			Name:      "Revenue",
			Statement: StatementIncome,
			Candidates: []string{
				"Total Revenue", "TotalRevenue", "Revenue",
				"Operating Revenue", "OperatingRevenue",
			},
		},
		{
			Name:      "CostOfRevenue",
			Statement: StatementIncome,
			Candidates: []string{
				"Cost Of Revenue", "CostOfRevenue", "Cost of Goods Sold", "CostOfGoodsSold",
				"Cost Of Goods And Services Sold", "CostOfGoodsAndServicesSold",
				"Cost Of Sales", "CostOfSales",
			},
			Keywords: []string{"cost", "revenue", "sales", "cogs"},
		},
		{
			Name:      "OperatingIncome",
			Statement: StatementIncome,
			Candidates: []string{
				"Operating Income", "OperatingIncome",
				"Operating Income (Loss)", "OperatingIncomeLoss",
			},
		},
		{
			Name:      "OtherOperatingExpense",
			Statement: StatementIncome,
			Candidates: []string{
				"Operating Expense", "OperatingExpense", "Operating Expenses", "OperatingExpenses",
				"Other Operating Expenses", "OtherOperatingExpenses",
				"Total Operating Expenses", "TotalOperatingExpenses",
			},
			Keywords: []string{"operating", "expense"},
		},
		{
			Name:      "InterestExpense",
			Statement: StatementIncome,
			Candidates: []string{
				"Interest Expense", "InterestExpense",
				"Interest Expense Non Operating", "InterestExpenseNonOperating",
				"Total Interest Expense", "TotalInterestExpense",
				"Interest And Debt Expense", "InterestAndDebtExpense",
				"Interest Expense Net", "InterestExpenseNet",
			},
			Keywords:          []string{"interest", "debt"},
			FallbackStatement: StatementCashflow,
		},
		{
			Name:      "PretaxIncome",
			Statement: StatementIncome,
			Candidates: []string{
				"Pretax Income", "PretaxIncome", "Income Before Tax", "IncomeBeforeTax",
				"Earnings Before Tax", "EarningsBeforeTax",
				"Income Loss Before Income Taxes", "IncomeLossBeforeIncomeTaxes",
			},
			Keywords: []string{"before tax", "pretax"},
		},
		{
			Name:      "IncomeTaxExpense",
			Statement: StatementIncome,
			Candidates: []string{
				"Income Tax Expense", "IncomeTaxExpense",
				"Provision For Income Taxes", "ProvisionForIncomeTaxes",
				"Income Taxes", "IncomeTaxes",
				"Income Tax (Benefit) Expense", "IncomeTaxExpenseBenefit",
				"Income Tax Provision", "IncomeTaxProvision",
				"Provision For Income Tax", "ProvisionForIncomeTax",
			},
			Keywords: []string{"tax", "provision"},
		},
		{
			Name:      "NetIncome",
			Statement: StatementIncome,
			Candidates: []string{
				"Net Income", "NetIncome",
				"Net Income Common Stockholders", "NetIncomeCommonStockholders",
				"Net Income Applicable To Common Shares", "NetIncomeApplicableToCommonShares",
			},
		},
		{
			Name:      "EPS",
			Statement: StatementIncome,
			Candidates: []string{
				"Diluted EPS", "DilutedEPS", "Basic EPS", "BasicEPS",
				"EPS (Diluted)", "EarningsPerShare",
			},
		},
		{
			Name:      "CashAndSTInvestments",
			Statement: StatementBalance,
			Candidates: []string{
				"Cash And Cash Equivalents",
				"CashCashEquivalentsAndShortTermInvestments",
				"Cash And Short Term Investments",
			},
		},
		{
			Name:      "CurrentAssets",
			Statement: StatementBalance,
			Candidates: []string{
				"Total Current Assets", "TotalCurrentAssets",
				"Current Assets", "CurrentAssets",
				"Trading Securities", "Trading Assets",
			},
		},
		{
			Name:      "CurrentLiabilities",
			Statement: StatementBalance,
			Candidates: []string{
				"Total Current Liabilities", "TotalCurrentLiabilities",
				"Current Liabilities", "CurrentLiabilities",
				"Current Debt", "Deposits",
			},
		},
		{
			Name:      "TotalAssets",
			Statement: StatementBalance,
			Candidates: []string{
				"Total Assets", "TotalAssets",
			},
		},
		{
			Name:      "TotalLiabilities",
			Statement: StatementBalance,
			Candidates: []string{
				"Total Liabilities Net Minority Interest", "TotalLiabilitiesNetMinorityInterest",
				"Total Liabilities",
			},
		},
		{
			Name:      "TotalEquity",
			Statement: StatementBalance,
			Candidates: []string{
				"Total Stockholder Equity", "TotalStockholderEquity", "StockholdersEquity",
				"Total Equity Gross Minority Interest", "TotalEquityGrossMinorityInterest",
			},
		},
		{
			Name:      "ShortTermDebtOrCurrentLiab",
			Statement: StatementBalance,
			Candidates: []string{
				"Current Debt", "CurrentDebt", "Short Term Debt", "ShortTermDebt",
				"Total Current Liabilities", "Current Portion Of Long Term Debt",
			},
		},
		{
			Name:      "LongTermDebt",
			Statement: StatementBalance,
			Candidates: []string{
				"Long Term Debt", "LongTermDebt", "Non Current Debt", "NonCurrentDebt",
				"Long Term Debt And Capital Lease Obligation",
			},
		},
		{
			Name:      "TotalDebt",
			Statement: StatementBalance,
			Candidates: []string{
				"Total Debt", "TotalDebt",
				"Short Long Term Debt", "Short Long Term Debt Total",
				"Long Term Debt Noncurrent",
			},
		},
		{
			Name:      "CashFromOps",
			Statement: StatementCashflow,
			Candidates: []string{
				"Operating Cash Flow", "OperatingCashFlow",
				"Total Cash From Operating Activities",
				"Net Cash Provided by Operating Activities",
				"NetCashProvidedByUsedInOperatingActivities",
			},
		},
		{
			Name:      "CapitalExpenditure",
			Statement: StatementCashflow,
			Candidates: []string{
				"Capital Expenditure", "CapitalExpenditure",
				"Capital Expenditures", "CapitalExpenditures",
				"Purchase Of Property And Equipment", "PurchaseOfPropertyAndEquipment",
				"Investments In Property Plant And Equipment",
				"Purchase Of Fixed Assets", "PurchaseOfFixedAssets",
			},
			Keywords: []string{"capital", "property", "equipment", "purchases", "ppe"},
		},
	}
}
