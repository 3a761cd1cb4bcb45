package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logpress/pkg/types"
)

var apacheLogs = []string{
	"[Thu Jun 09 06:07:04 2005] [notice] LDAP: Built with OpenLDAP",
	"[Thu Jun 09 06:07:04 2005] [notice] LDAP: SSL support unavailable",
	"[Thu Jun 09 06:07:05 2005] [notice] LDAP: another notice line",
}

var healthAppLogs = []string{
	"20171223-22:15:29:606|Step_LSC|30002312|onStandStepChanged 3579",
	"20171223-22:15:29:633|Step_StandReportReceiver|30002312|onReceive action",
	"20171223-22:15:29:635|Step_StandStepCounter|30002312|flush sensor data",
	"20171223-22:15:29:738|Step_LSC|30002312|onStandStepChanged 3579",
}

func TestExtract_Empty(t *testing.T) {
	assert.Nil(t, Extract(nil, DefaultOptions()))
	assert.Nil(t, Extract([]string{"", "   "}, DefaultOptions()))
}

func TestExtract_ApacheGroupsIntoOneTemplate(t *testing.T) {
	templates := Extract(apacheLogs, Options{MinSupport: 2})
	assert.NotEmpty(t, templates)
	assert.Equal(t, len(apacheLogs), templates[0].MatchCount)
}

func TestExtract_BelowMinSupportDropped(t *testing.T) {
	templates := Extract(apacheLogs, Options{MinSupport: 10})
	assert.Empty(t, templates)
}

func TestExtract_HealthAppPipeDelimited(t *testing.T) {
	templates := Extract(healthAppLogs, Options{MinSupport: 2})
	assert.NotEmpty(t, templates)
	assert.Equal(t, len(healthAppLogs), templates[0].MatchCount)
}

func TestExtract_SortedByMatchCountDescending(t *testing.T) {
	lines := append(append([]string{}, apacheLogs...), healthAppLogs...)
	templates := Extract(lines, Options{MinSupport: 2})
	for i := 1; i < len(templates); i++ {
		assert.GreaterOrEqual(t, templates[i-1].MatchCount, templates[i].MatchCount)
	}
}

func TestMatch_ExtractsPlaceholderValues(t *testing.T) {
	templates := Extract(apacheLogs, Options{MinSupport: 2})
	tmpl, extracted, ok := Match(templates, apacheLogs[0])
	assert.True(t, ok)
	assert.Equal(t, templates[0].TemplateID, tmpl.TemplateID)
	assert.NotEmpty(t, extracted)
}

func TestMatch_NoTemplateFitsReturnsFalse(t *testing.T) {
	_, _, ok := Match(nil, "anything")
	assert.False(t, ok)
}

func TestDescribe_ComputesCoverage(t *testing.T) {
	templates := Extract(apacheLogs, Options{MinSupport: 2})
	summary := Describe(templates)
	assert.Equal(t, len(apacheLogs), summary.TotalLinesMatched)
	assert.Equal(t, 1, summary.TemplateCount)
	assert.Len(t, summary.TopTemplates, 1)
}

func TestExtract_PlaceholderPositionsNeverOverlapLiterals(t *testing.T) {
	templates := Extract(apacheLogs, Options{MinSupport: 2})
	for _, tmpl := range templates {
		for _, pos := range tmpl.PlaceholderPositions() {
			assert.True(t, tmpl.Pattern[pos].Placeholder)
		}
	}
	_ = types.LogTemplate{}
}
