package knowledge

// painPoints 是进程内唯一的数据源，任何调用方都不得修改。
var painPoints = []PainPoint{
	{
		ID: 1, Name: "Lead Intake → Inspection → Sale Handoffs",
		Impact: 9, Effort: 6, CostType: "Revenue", PrimaryCost: "Lost Opportunities",
		SolutionType: "Automation", Owner: "Sales Ops Manager", QuickWin: "High", Priority: "P0", Category: "Sales",
		Pain:      "Leads come from multiple sources (canvassing, referrals, storms, online). Inconsistent qualification and follow-up. Sales reps spend time chasing instead of selling.",
		WhyCostly: "Lost or delayed opportunities, Uneven close rates, Poor customer experience early on",
		Solution:  "Centralized lead intake + qualification workflow, Clear ownership rules + automation triggers, AI-assisted lead scoring and routing",
		ActionItems: []string{
			"Implement unified lead capture system",
			"Create automated qualification scoring",
			"Set up smart routing rules by territory/rep",
			"Build AI-powered lead scoring model",
		},
		Metrics: []Metric{
			{Label: "Lead Response Time", Current: ">24 hours", Target: "<15 minutes"},
			{Label: "Lead Conversion Rate", Current: "25%", Target: "35%"},
			{Label: "Handoff Time", Current: "3-5 days", Target: "Same day"},
		},
	},
	{
		ID: 2, Name: "Sales Rep Performance",
		Impact: 8, Effort: 7, CostType: "Revenue", PrimaryCost: "Revenue Volatility",
		SolutionType: "Standardization", Owner: "Sales Director", QuickWin: "Medium", Priority: "P1", Category: "Sales",
		Pain:      "Top reps outperform dramatically, New or average reps struggle to ramp, Knowledge lives in people, not systems",
		WhyCostly: "Revenue volatility, High training and churn costs, You can't confidently scale",
		Solution:  "Standardized sales playbooks (AI-searchable), Real-time coaching prompts and scripts, KPI-driven accountability dashboards",
		ActionItems: []string{
			"Document top rep best practices",
			"Create role-based playbooks",
			"Implement real-time coaching tools",
			"Build performance dashboards",
		},
		Metrics: []Metric{
			{Label: "Rep Ramp-up Time", Current: "90 days", Target: "45 days"},
			{Label: "Top vs Bottom Gap", Current: "4x", Target: "1.5x"},
			{Label: "Training Adoption", Current: "30%", Target: "80%"},
		},
	},
	{
		ID: 3, Name: "Insurance Claim Process",
		Impact: 7, Effort: 8, CostType: "OpEx", PrimaryCost: "Extended Cycle Times",
		SolutionType: "Process+Automation", Owner: "Claims Manager", QuickWin: "Medium", Priority: "P2", Category: "Claims",
		Pain:      "Adjuster variability, Documentation inconsistencies, Homeowner confusion and anxiety",
		WhyCostly: "Extended cycle times, Underpaid claims, Sales and production friction",
		Solution:  "Claim documentation SOPs + templates, Pre-adjuster prep workflows, Homeowner education automation (texts/videos)",
		ActionItems: []string{
			"Standardize claim documentation templates",
			"Create pre-adjuster checklist",
			"Build homeowner communication workflows",
			"Implement claim tracking system",
		},
		Metrics: []Metric{
			{Label: "Claim Cycle Time", Current: "45-60 days", Target: "30 days"},
			{Label: "First Call Resolution", Current: "60%", Target: "85%"},
			{Label: "Claim Approval Rate", Current: "70%", Target: "85%"},
		},
	},
	{
		ID: 4, Name: "Production Handoffs",
		Impact: 8, Effort: 5, CostType: "OpEx", PrimaryCost: "Rework & Delays",
		SolutionType: "Standardization", Owner: "Operations Manager", QuickWin: "High", Priority: "P1", Category: "Operations",
		Pain:      "Missing measurements, scopes, or expectations, Production teams inherit problems they didn't create",
		WhyCostly: "Rework and delays, Internal conflict, Customer dissatisfaction",
		Solution:  "Sales-to-Production Readiness Checklist, Digital handoff requirements (no exceptions), Automated rejection/feedback loop",
		ActionItems: []string{
			"Create mandatory handoff checklist",
			"Implement digital handoff form",
			"Set up automated quality checks",
			"Build feedback loop system",
		},
		Metrics: []Metric{
			{Label: "Rework Rate", Current: "25%", Target: "<5%"},
			{Label: "Handoff Time", Current: "2-3 days", Target: "<4 hours"},
			{Label: "Complete Handoffs", Current: "65%", Target: "95%"},
		},
	},
	{
		ID: 5, Name: "Scheduling & Capacity",
		Impact: 9, Effort: 9, CostType: "OpEx", PrimaryCost: "Idle Crews/Burnout",
		SolutionType: "Predictive Analytics", Owner: "Production Director", QuickWin: "Low", Priority: "P0", Category: "Operations",
		Pain:      "Crews scheduled last-minute, Weather + material delays compound chaos, No clear view of future workload",
		WhyCostly: "Idle crews or burnout, Missed deadlines, Margin erosion",
		Solution:  "Forecast-based scheduling, Capacity planning dashboards, Automated rescheduling logic tied to weather/materials",
		ActionItems: []string{
			"Build capacity planning dashboard",
			"Integrate weather forecasting",
			"Implement predictive scheduling",
			"Create material tracking system",
		},
		Metrics: []Metric{
			{Label: "Crew Utilization", Current: "65%", Target: "85%"},
			{Label: "Schedule Lead Time", Current: "2-3 days", Target: "7-14 days"},
			{Label: "Weather Reschedule Rate", Current: "15%", Target: "<5%"},
		},
	},
	{
		ID: 6, Name: "Vendor & Crew Quality",
		Impact: 7, Effort: 6, CostType: "Quality", PrimaryCost: "Callbacks/Warranty",
		SolutionType: "Performance Mgmt", Owner: "Vendor Manager", QuickWin: "Medium", Priority: "P1", Category: "Operations",
		Pain:      "Quality varies by crew, Accountability is informal, Great crews aren't differentiated from average ones",
		WhyCostly: "Callbacks and warranty issues, Brand risk, Lost repeat/referral business",
		Solution:  "Crew scorecards (quality, speed, callbacks), Preferred-vendor tiers, Performance-based assignment",
		ActionItems: []string{
			"Implement crew scorecard system",
			"Create vendor tier structure",
			"Build performance tracking",
			"Link performance to assignment",
		},
		Metrics: []Metric{
			{Label: "Callback Rate", Current: "12%", Target: "<3%"},
			{Label: "Quality Score", Current: "3.5/5", Target: "4.5/5"},
			{Label: "Top Crew Retention", Current: "60%", Target: "90%"},
		},
	},
	{
		ID: 7, Name: "Homeowner Communication",
		Impact: 6, Effort: 4, CostType: "CX", PrimaryCost: "High Inbound Volume",
		SolutionType: "Automation", Owner: "CX Manager", QuickWin: "High", Priority: "P2", Category: "Customer Experience",
		Pain:      "Repetitive status update calls/texts, Customers feel \"left in the dark\", Staff spend time answering the same questions",
		WhyCostly: "Higher inbound volume, Lower satisfaction, Stress on team",
		Solution:  "Automated status updates by project phase, Customer portal or SMS timeline, FAQ + expectation-setting automation",
		ActionItems: []string{
			"Build automated status notifications",
			"Create customer portal",
			"Implement FAQ automation",
			"Set expectation-setting workflows",
		},
		Metrics: []Metric{
			{Label: "Inbound Call Volume", Current: "8/day", Target: "2/day"},
			{Label: "Customer Satisfaction", Current: "3.8/5", Target: "4.7/5"},
			{Label: "Auto-Response Rate", Current: "20%", Target: "80%"},
		},
	},
	{
		ID: 8, Name: "Data Fragmentation",
		Impact: 9, Effort: 10, CostType: "Data", PrimaryCost: "Poor Decisions",
		SolutionType: "Centralization", Owner: "IT/BizOps", QuickWin: "Low", Priority: "P0", Category: "Technology",
		Pain:      "CRM, spreadsheets, texts, emails, photos, Conflicting information, Reporting is slow or unreliable",
		WhyCostly: "Poor decisions, Time wasted reconciling data, Limited AI leverage",
		Solution:  "Unified data architecture, Role-based dashboards, AI-readable operational data layer",
		ActionItems: []string{
			"Design unified data model",
			"Build integration layer",
			"Create role-based dashboards",
			"Implement AI data pipeline",
		},
		Metrics: []Metric{
			{Label: "Data Sources", Current: "10+", Target: "2-3"},
			{Label: "Report Generation Time", Current: "2-3 days", Target: "<1 hour"},
			{Label: "Data Accuracy", Current: "75%", Target: "95%"},
		},
	},
	{
		ID: 9, Name: "Leadership Bottleneck",
		Impact: 10, Effort: 7, CostType: "Strategic", PrimaryCost: "Bottlenecked Growth",
		SolutionType: "Delegation Framework", Owner: "CEO/COO", QuickWin: "High", Priority: "P0", Category: "Leadership",
		Pain:      "You and key leaders solve daily fires, Strategic projects stall, Delegation is unclear or incomplete",
		WhyCostly: "Bottlenecked growth, Burnout, Missed opportunities",
		Solution:  "Clear ownership by function, Decision frameworks (who decides what), AI copilots for leaders and managers",
		ActionItems: []string{
			"Document decision authority matrix",
			"Create functional ownership chart",
			"Implement AI copilot tools",
			"Build delegation tracking",
		},
		Metrics: []Metric{
			{Label: "Leader Firefighting Time", Current: "70%", Target: "<20%"},
			{Label: "Strategic Project Velocity", Current: "Low", Target: "High"},
			{Label: "Decision Latency", Current: "3-5 days", Target: "<24 hours"},
		},
	},
	{
		ID: 10, Name: "Training & SOPs",
		Impact: 8, Effort: 6, CostType: "HR", PrimaryCost: "Slower Ramp-up",
		SolutionType: "Knowledge System", Owner: "HR/Training Lead", QuickWin: "Medium", Priority: "P1", Category: "Operations",
		Pain:      "Ask Bob culture, Inconsistent execution, Hard to onboard quickly",
		WhyCostly: "Slower ramp-up, Quality drift, Dependence on specific people",
		Solution:  "Living SOP system (searchable, role-based), AI-powered internal knowledge assistant, Continuous improvement feedback loop",
		ActionItems: []string{
			"Build living SOP platform",
			"Create role-based access",
			"Implement AI knowledge assistant",
			"Set up feedback loops",
		},
		Metrics: []Metric{
			{Label: "Onboarding Time", Current: "60 days", Target: "30 days"},
			{Label: "SOP Search Time", Current: "15+ minutes", Target: "<2 minutes"},
			{Label: "Process Adherence", Current: "50%", Target: "85%"},
		},
	},
}
