// Package catalog is the static list of counseling services offered.
package catalog

import (
	"github.com/shopspring/decimal"

	"counseling-booking-api/internal/model"
)

type Price struct {
	Standard  decimal.Decimal `json:"standard"`
	Sliding   bool            `json:"sliding"`
	Insurance bool            `json:"insurance"`
}

type Service struct {
	ID           model.ServiceType   `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Duration     int                 `json:"duration"`
	Price        Price               `json:"price"`
	Specialties  []string            `json:"specialties"`
	Availability string              `json:"availability"`
	SessionTypes []model.SessionType `json:"sessionTypes"`

	// detail view only
	Process      []string `json:"process,omitempty"`
	WhatToExpect []string `json:"whatToExpect,omitempty"`
	IdealFor     []string `json:"idealFor,omitempty"`
}

type Catalog struct {
	services []Service
	byID     map[model.ServiceType]*Service
}

func New(services []Service) *Catalog {
	c := &Catalog{services: services, byID: make(map[model.ServiceType]*Service, len(services))}
	for i := range c.services {
		c.byID[c.services[i].ID] = &c.services[i]
	}
	return c
}

func Default() *Catalog { return New(defaultServices()) }

// List returns the summary view of every service.
func (c *Catalog) List() []Service {
	out := make([]Service, len(c.services))
	for i, s := range c.services {
		s.Process, s.WhatToExpect, s.IdealFor = nil, nil, nil
		out[i] = s
	}
	return out
}

func (c *Catalog) Get(id string) (Service, bool) {
	s, ok := c.byID[model.ServiceType(id)]
	if !ok {
		return Service{}, false
	}
	return *s, true
}

func (c *Catalog) Name(st model.ServiceType) string {
	if s, ok := c.byID[st]; ok {
		return s.Name
	}
	return string(st)
}

// Price returns the standard session price of st.
func (c *Catalog) Price(st model.ServiceType) (decimal.Decimal, bool) {
	s, ok := c.byID[st]
	if !ok {
		return decimal.Zero, false
	}
	return s.Price.Standard, true
}

var (
	weekdays      = "Monday-Saturday"
	standardPrice = func(n int64) Price {
		return Price{Standard: decimal.NewFromInt(n), Sliding: true, Insurance: true}
	}
)

func defaultServices() []Service {
	return []Service{
		{
			ID:          model.ServiceIndividual,
			Name:        "Individual Counseling",
			Description: "One-on-one sessions addressing personal challenges including anxiety, depression, trauma, grief, addiction recovery, and personal growth.",
			Duration:    60,
			Price:       standardPrice(100),
			Specialties: []string{
				"Anxiety and Depression Treatment",
				"Trauma and PTSD Recovery",
				"Grief and Loss Counseling",
				"Addiction Recovery Support",
				"Life Transitions and Changes",
				"Spiritual Counseling",
			},
			Availability: weekdays,
			SessionTypes: model.ServiceIndividual.SessionTypes(),
			Process: []string{
				"Initial intake assessment (90 minutes)",
				"Treatment planning and goal setting",
				"Regular therapy sessions (weekly or bi-weekly)",
				"Progress review and plan adjustments",
				"Completion planning and aftercare",
			},
			WhatToExpect: []string{
				"Confidential, judgment-free environment",
				"Faith perspective integrated with clinical expertise",
				"Personalized treatment approach",
				"Homework assignments and practical tools",
			},
			IdealFor: []string{
				"Adults facing anxiety, depression, or trauma",
				"Those experiencing life transitions",
				"People struggling with addiction or grief",
			},
		},
		{
			ID:          model.ServiceCouples,
			Name:        "Couples Counseling",
			Description: "Strengthen your marriage or relationship through improved communication, conflict resolution, and deeper intimacy.",
			Duration:    90,
			Price:       standardPrice(150),
			Specialties: []string{
				"Communication Skills Development",
				"Conflict Resolution",
				"Intimacy and Connection",
				"Pre-marital Counseling",
				"Infidelity Recovery",
			},
			Availability: weekdays,
			SessionTypes: model.ServiceCouples.SessionTypes(),
		},
		{
			ID:          model.ServiceFamily,
			Name:        "Family Therapy",
			Description: "Help your family heal and restore healthy dynamics through better communication and stronger bonds.",
			Duration:    90,
			Price:       standardPrice(160),
			Specialties: []string{
				"Parent-Child Relationships",
				"Sibling Conflicts",
				"Blended Family Challenges",
				"Teen and Adolescent Issues",
				"Family Crisis Intervention",
			},
			Availability: weekdays,
			SessionTypes: model.ServiceFamily.SessionTypes(),
		},
		{
			ID:          model.ServiceGroup,
			Name:        "Group Therapy",
			Description: "Connect with others who share similar experiences in a supportive group environment.",
			Duration:    90,
			Price:       standardPrice(50),
			Specialties: []string{
				"Support Groups for Specific Issues",
				"Skills-Based Therapy Groups",
				"Recovery and Addiction Groups",
				"Grief and Loss Support",
			},
			Availability: "Monday-Friday evenings",
			SessionTypes: model.ServiceGroup.SessionTypes(),
		},
		{
			ID:          model.ServiceCrisis,
			Name:        "Crisis Intervention",
			Description: "Immediate support for individuals and families experiencing acute mental health crises.",
			Duration:    60,
			Price:       standardPrice(120),
			Specialties: []string{
				"Emergency Counseling Sessions",
				"Safety Planning and Assessment",
				"Referral and Resource Coordination",
				"Follow-up Crisis Support",
			},
			Availability: "24/7",
			SessionTypes: model.ServiceCrisis.SessionTypes(),
		},
		{
			ID:          model.ServiceAddiction,
			Name:        "Addiction Counseling",
			Description: "Structured recovery support for substance use and behavioral addictions, including relapse prevention.",
			Duration:    60,
			Price:       standardPrice(110),
			Specialties: []string{
				"Substance Use Recovery",
				"Relapse Prevention Planning",
				"Behavioral Addictions",
				"Family Support in Recovery",
			},
			Availability: weekdays,
			SessionTypes: model.ServiceAddiction.SessionTypes(),
		},
		{
			ID:          model.ServiceGrief,
			Name:        "Grief Counseling",
			Description: "Compassionate care for those working through loss, bereavement, and major life changes.",
			Duration:    60,
			Price:       standardPrice(100),
			Specialties: []string{
				"Bereavement Support",
				"Complicated Grief",
				"Loss of a Child or Spouse",
				"Anticipatory Grief",
			},
			Availability: weekdays,
			SessionTypes: model.ServiceGrief.SessionTypes(),
		},
		{
			ID:          model.ServiceYouth,
			Name:        "Youth Counseling",
			Description: "Age-appropriate counseling for children and teenagers facing emotional, social, or academic challenges.",
			Duration:    60,
			Price:       standardPrice(90),
			Specialties: []string{
				"Anxiety in Children and Teens",
				"Bullying and Peer Pressure",
				"School and Academic Stress",
				"Self-Esteem Building",
			},
			Availability: "Monday-Friday afternoons, Saturday",
			SessionTypes: model.ServiceYouth.SessionTypes(),
		},
	}
}
