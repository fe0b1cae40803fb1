package document

import (
	"strings"

	"github.com/movedocs/tariffworks/models"
)

// boilerplateSection is one fixed regulatory section. The body text is
// static data parameterized only by carrier identity tokens; every tariff
// document emits the same sequence regardless of pricing method.
type boilerplateSection struct {
	Title string
	Body  []string
}

var boilerplateSections = []boilerplateSection{
	{
		Title: "Section 1 — Definitions",
		Body: []string{
			"In this tariff, \"Carrier\" means {{COMPANY}}, operating under MC Number {{MC}} and USDOT Number {{USDOT}}. \"Shipper\" means the party contracting with the Carrier for the transportation of household goods. \"Accessorial service\" means any service performed in addition to line-haul transportation, including packing, storage-in-transit, stair carries, long carries, shuttle service, and waiting time.",
			"\"Line-haul\" means the transportation charge between origin and destination, exclusive of labor and accessorial charges. \"Binding estimate\" means a written estimate of the total charges that may not be increased unless the Shipper requests additional services.",
		},
	},
	{
		Title: "Section 2 — Scope of Tariff",
		Body: []string{
			"This tariff names the rates, rules, and charges applicable to the transportation of household goods by {{COMPANY}} within its service territory of {{TERRITORY}}, in interstate or foreign commerce, as required by 49 U.S.C. 13702 and 49 CFR Part 1310.",
			"This tariff applies to all shipments accepted for transportation on or after its effective date and remains in force until superseded. Copies are available for inspection upon reasonable request by any Shipper.",
		},
	},
	{
		Title: "Section 3 — Claims Procedure",
		Body: []string{
			"Claims for loss or damage must be filed in writing with the Carrier within nine (9) months of delivery, or within nine (9) months of a reasonable delivery date for lost shipments. The Carrier will acknowledge receipt of a claim within thirty (30) days and will pay, decline, or make a settlement offer within one hundred twenty (120) days of receipt.",
			"Civil action may be instituted against the Carrier no later than two (2) years and one (1) day from the date the Carrier gives written notice that it has disallowed the claim or any part of it.",
		},
	},
	{
		Title: "Section 4 — Valuation and Liability Options",
		Body: []string{
			"Released value protection: at no additional charge, the Carrier's liability is limited to sixty cents ($0.60) per pound per article. The Shipper must expressly waive full value protection in writing to select this option.",
			"Full value protection: unless the Shipper waives it, the Carrier is liable for the replacement value of lost or damaged goods, subject to a minimum declared value of six dollars ($6.00) per pound times the weight of the shipment. Additional valuation charges apply as shown in the rate section of this tariff.",
		},
	},
	{
		Title: "Section 5 — Payment Terms",
		Body: []string{
			"Unless credit arrangements are made in advance, all charges must be paid by cash, certified check, money order, or accepted card at the time of delivery. The Carrier may not refuse delivery upon tender of one hundred ten percent (110%) of a non-binding estimate, with any remaining charges due within thirty (30) days.",
			"Storage-in-transit, when requested, is billed at the accessorial rates named in this tariff and must be paid before release of the shipment from storage.",
		},
	},
	{
		Title: "Section 6 — General Rules",
		Body: []string{
			"The Carrier will furnish the Shipper a copy of the publication \"Your Rights and Responsibilities When You Move\" before accepting a shipment. Weighing, when required, is performed on a certified scale, and the Shipper may observe any weighing upon request.",
			"Items of extraordinary value (currency, jewelry, documents) must be disclosed before loading. The Carrier may refuse articles likely to damage other property, perishable goods, and hazardous materials. Rates named herein do not include disassembly or assembly of items requiring third-party servicing.",
		},
	},
}

// carrierTokens builds the replacement set stamped into boilerplate bodies
func carrierTokens(profile models.CarrierProfile, territory string) *strings.Replacer {
	if territory == "" {
		territory = "the 48 contiguous United States"
	}
	return strings.NewReplacer(
		"{{COMPANY}}", profile.CompanyName,
		"{{MC}}", profile.MCNumber,
		"{{USDOT}}", profile.USDOTNumber,
		"{{TERRITORY}}", territory,
	)
}
