package domain

type NodeKind string

const (
	KindChapter  NodeKind = "chapter"
	KindCostItem NodeKind = "cost_item"
	KindTextLine NodeKind = "text_line"
)

// ValidNodeKinds is the canonical set of accepted node kind strings.
var ValidNodeKinds = map[string]bool{
	"chapter": true, "cost_item": true, "text_line": true,
}

// QuantityType classifies what a cost item's quantity measures.
type QuantityType string

const (
	QuantityCount  QuantityType = "count"
	QuantityLength QuantityType = "length"
	QuantityArea   QuantityType = "area"
	QuantityVolume QuantityType = "volume"
	QuantityWeight QuantityType = "weight"
	QuantityTime   QuantityType = "time"
)

// ValidQuantityTypes is the canonical set of accepted quantity type strings.
var ValidQuantityTypes = map[string]bool{
	"count": true, "length": true, "area": true,
	"volume": true, "weight": true, "time": true,
}

// UnitSymbol returns the short unit symbol for the quantity type.
func (q QuantityType) UnitSymbol() string {
	switch q {
	case QuantityCount:
		return "st"
	case QuantityLength:
		return "m"
	case QuantityArea:
		return "m²"
	case QuantityVolume:
		return "m³"
	case QuantityWeight:
		return "kg"
	case QuantityTime:
		return "uur"
	default:
		return ""
	}
}

// UnitName returns the full unit name for the quantity type.
func (q QuantityType) UnitName() string {
	switch q {
	case QuantityCount:
		return "stuks"
	case QuantityLength:
		return "meter"
	case QuantityArea:
		return "vierkante meter"
	case QuantityVolume:
		return "kubieke meter"
	case QuantityWeight:
		return "kilogram"
	case QuantityTime:
		return "uur"
	default:
		return ""
	}
}

type ScheduleType string

const (
	ScheduleBudget         ScheduleType = "budget"
	ScheduleCostPlan       ScheduleType = "costplan"
	ScheduleEstimate       ScheduleType = "estimate"
	ScheduleTender         ScheduleType = "tender"
	SchedulePricedBoQ      ScheduleType = "priced_boq"
	ScheduleUnpricedBoQ    ScheduleType = "unpriced_boq"
	ScheduleScheduleOfRate ScheduleType = "schedule_of_rates"
)

type ScheduleStatus string

const (
	StatusDraft     ScheduleStatus = "draft"
	StatusApproved  ScheduleStatus = "approved"
	StatusSubmitted ScheduleStatus = "submitted"
	StatusRejected  ScheduleStatus = "rejected"
)
