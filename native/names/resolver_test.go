package names_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/core/state"
	"namechain/native/names"
	"namechain/storage"
)

func newResolverFixture(t *testing.T) (*names.Resolver, *names.Registry, *names.Registry) {
	t.Helper()
	owner := addr(1)
	ledger := state.NewLedger(storage.NewMemDB())
	forbidden := names.NewForbiddenNames(owner)
	factory := names.NewFactory(owner, addr(100), big.NewInt(0), forbidden, ledger, nil)
	require.NoError(t, forbidden.AddFactory(owner, addr(100)))

	web3, err := factory.OwnerCreateTld(owner, ".web3", "WEB3", owner, big.NewInt(0), false)
	require.NoError(t, err)
	chain, err := factory.OwnerCreateTld(owner, ".chain", "CHAIN", owner, big.NewInt(0), false)
	require.NoError(t, err)

	resolver := names.NewResolver(owner)
	require.NoError(t, resolver.AddFactory(owner, factory))
	return resolver, web3, chain
}

func TestResolverLookups(t *testing.T) {
	resolver, web3, chain := newResolverFixture(t)
	owner := addr(1)
	alice := addr(2)

	_, err := web3.Mint(owner, "alice", alice, common.Address{}, nil)
	require.NoError(t, err)
	require.NoError(t, web3.EditData(alice, "alice", "ipfs://profile"))

	require.Equal(t, web3.Address(), resolver.TldAddress(".WEB3"))
	require.Equal(t, addr(100), resolver.TldFactoryAddress(".web3"))
	require.Equal(t, common.Address{}, resolver.TldAddress(".missing"))

	tlds := resolver.Tlds()
	require.Len(t, tlds, 2)
	require.Equal(t, chain.Address(), tlds[".chain"])

	require.Equal(t, alice, resolver.DomainHolder("alice", ".web3"))
	require.Equal(t, common.Address{}, resolver.DomainHolder("alice", ".chain"))
	require.Equal(t, "ipfs://profile", resolver.DomainData("alice", ".web3"))
	require.Equal(t, "", resolver.DomainData("bob", ".web3"))
	require.NotEmpty(t, resolver.DomainTokenURI("alice", ".web3"))
	require.Empty(t, resolver.DomainTokenURI("bob", ".web3"))
}

func TestResolverDefaultDomains(t *testing.T) {
	resolver, web3, chain := newResolverFixture(t)
	owner := addr(1)
	alice := addr(2)

	require.Empty(t, resolver.DefaultDomains(alice))
	require.Equal(t, "", resolver.FirstDefaultDomain(alice))

	_, err := web3.Mint(owner, "alice", alice, common.Address{}, nil)
	require.NoError(t, err)
	_, err = chain.Mint(owner, "ally", alice, common.Address{}, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"alice.web3", "ally.chain"}, resolver.DefaultDomains(alice))
	require.Equal(t, "alice.web3", resolver.FirstDefaultDomain(alice))
	require.Equal(t, "alice", resolver.DefaultDomain(alice, ".web3"))
}

func TestResolverCustomDefault(t *testing.T) {
	resolver, web3, chain := newResolverFixture(t)
	owner := addr(1)
	alice := addr(2)
	bob := addr(3)

	_, err := web3.Mint(owner, "alice", alice, common.Address{}, nil)
	require.NoError(t, err)
	_, err = chain.Mint(owner, "ally", alice, common.Address{}, nil)
	require.NoError(t, err)

	// The override must point at a name the caller actually holds.
	require.ErrorIs(t, resolver.SetCustomDefaultDomain(bob, "alice", ".web3"), names.ErrNotDomainHolder)
	require.NoError(t, resolver.SetCustomDefaultDomain(alice, "ally", ".chain"))
	require.Equal(t, "ally.chain", resolver.FirstDefaultDomain(alice))

	// A stale override falls back to the scan order.
	require.NoError(t, chain.TransferDomain(alice, "ally", bob))
	require.Equal(t, "alice.web3", resolver.FirstDefaultDomain(alice))

	// Clearing restores the plain scan.
	require.NoError(t, resolver.SetCustomDefaultDomain(alice, "", ""))
	require.Equal(t, "alice.web3", resolver.FirstDefaultDomain(alice))
}

func TestResolverSkipsDeprecatedRegistries(t *testing.T) {
	resolver, web3, chain := newResolverFixture(t)
	owner := addr(1)
	alice := addr(2)

	_, err := web3.Mint(owner, "alice", alice, common.Address{}, nil)
	require.NoError(t, err)
	_, err = chain.Mint(owner, "ally", alice, common.Address{}, nil)
	require.NoError(t, err)

	require.NoError(t, resolver.AddDeprecatedTldAddress(owner, web3.Address()))

	require.Equal(t, common.Address{}, resolver.TldAddress(".web3"))
	require.Equal(t, common.Address{}, resolver.DomainHolder("alice", ".web3"))
	require.Equal(t, []string{"ally.chain"}, resolver.DefaultDomains(alice))
	require.Equal(t, "ally.chain", resolver.FirstDefaultDomain(alice))
	require.Len(t, resolver.Tlds(), 1)

	require.NoError(t, resolver.RemoveDeprecatedTldAddress(owner, web3.Address()))
	require.Equal(t, web3.Address(), resolver.TldAddress(".web3"))
}
