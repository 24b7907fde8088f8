package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaultsToCitizen(t *testing.T) {
	assert.Equal(t, Citizen, Parse(""))
	assert.Equal(t, Citizen, Parse("superuser"))
	assert.Equal(t, Official, Parse("official"))
	assert.Equal(t, Admin, Parse("admin"))
}

func TestCapabilities(t *testing.T) {
	assert.False(t, CanModerateReports(Citizen))
	assert.True(t, CanModerateReports(Official))
	assert.True(t, CanModerateReports(Admin))

	assert.False(t, CanDeleteReports(Official))
	assert.True(t, CanDeleteReports(Admin))

	assert.False(t, CanManageUsers(Official))
	assert.True(t, CanManageUsers(Admin))

	assert.False(t, CanManageProjects(Citizen))
	assert.True(t, CanRecordTransactions(Official))
	assert.False(t, CanViewInternalComments(Citizen))
}
