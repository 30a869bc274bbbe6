package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v6"

	"github.com/wardspan/azure-recon/internal/scan"
)

type networkClient struct {
	factory *armnetwork.ClientFactory
	scope   scan.Scope
}

func newNetworkClient(scope scan.Scope, cred azcore.TokenCredential) (*networkClient, error) {
	factory, err := armnetwork.NewClientFactory(string(scope), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("network client for %s: %w", scope, err)
	}
	return &networkClient{factory: factory, scope: scope}, nil
}

func (c *networkClient) SecurityGroups(ctx context.Context) ([]scan.SecurityGroupConfig, error) {
	out := make([]scan.SecurityGroupConfig, 0)
	pager := c.factory.NewSecurityGroupsClient().NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing NSGs: %w", err)
		}
		for _, nsg := range page.Value {
			if nsg == nil {
				continue
			}
			group := scan.SecurityGroupConfig{
				ID:            deref(nsg.ID),
				Name:          deref(nsg.Name),
				Location:      deref(nsg.Location),
				ResourceGroup: resourceGroupFromID(deref(nsg.ID)),
			}
			if nsg.Properties != nil {
				group.Rules = convertRules(nsg.Properties.SecurityRules)
			}
			out = append(out, group)
		}
	}
	return out, nil
}

func convertRules(rules []*armnetwork.SecurityRule) []scan.SecurityRule {
	out := make([]scan.SecurityRule, 0, len(rules))
	for _, rule := range rules {
		if rule == nil || rule.Properties == nil {
			continue
		}
		props := rule.Properties
		converted := scan.SecurityRule{
			Name:                 deref(rule.Name),
			Priority:             derefInt32(props.Priority),
			Direction:            "Unknown",
			Access:               "Unknown",
			Protocol:             "Any",
			SourcePortRange:      derefOr(props.SourcePortRange, "Any"),
			DestinationPortRange: derefOr(props.DestinationPortRange, "Any"),
			SourcePrefix:         derefOr(props.SourceAddressPrefix, "Any"),
			DestinationPrefix:    derefOr(props.DestinationAddressPrefix, "Any"),
		}
		if props.Direction != nil {
			converted.Direction = string(*props.Direction)
		}
		if props.Access != nil {
			converted.Access = string(*props.Access)
		}
		if props.Protocol != nil {
			converted.Protocol = string(*props.Protocol)
		}
		out = append(out, converted)
	}
	return out
}

func (c *networkClient) PublicIPAddresses(ctx context.Context) ([]scan.PublicIPAddress, error) {
	out := make([]scan.PublicIPAddress, 0)
	pager := c.factory.NewPublicIPAddressesClient().NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing public IPs: %w", err)
		}
		for _, pip := range page.Value {
			if pip == nil {
				continue
			}
			converted := scan.PublicIPAddress{
				ID:            deref(pip.ID),
				Name:          deref(pip.Name),
				Location:      deref(pip.Location),
				ResourceGroup: resourceGroupFromID(deref(pip.ID)),
			}
			if pip.Properties != nil {
				converted.IPAddress = deref(pip.Properties.IPAddress)
			}
			out = append(out, converted)
		}
	}
	return out, nil
}

func (c *networkClient) NetworkInterfaces(ctx context.Context) ([]scan.NetworkInterface, error) {
	out := make([]scan.NetworkInterface, 0)
	pager := c.factory.NewInterfacesClient().NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing network interfaces: %w", err)
		}
		for _, nic := range page.Value {
			if nic == nil || nic.Properties == nil {
				continue
			}
			converted := scan.NetworkInterface{
				ID:   deref(nic.ID),
				Name: deref(nic.Name),
			}
			if nic.Properties.VirtualMachine != nil {
				converted.VirtualMachineID = deref(nic.Properties.VirtualMachine.ID)
			}
			for _, ipCfg := range nic.Properties.IPConfigurations {
				if ipCfg == nil || ipCfg.Properties == nil || ipCfg.Properties.PublicIPAddress == nil {
					continue
				}
				if id := deref(ipCfg.Properties.PublicIPAddress.ID); id != "" {
					converted.PublicIPAddresses = append(converted.PublicIPAddresses, id)
				}
			}
			out = append(out, converted)
		}
	}
	return out, nil
}

func (c *networkClient) LoadBalancers(ctx context.Context) ([]scan.LoadBalancer, error) {
	out := make([]scan.LoadBalancer, 0)
	pager := c.factory.NewLoadBalancersClient().NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing load balancers: %w", err)
		}
		for _, lb := range page.Value {
			if lb == nil || lb.Properties == nil {
				continue
			}
			converted := scan.LoadBalancer{
				ID:   deref(lb.ID),
				Name: deref(lb.Name),
			}
			for _, fe := range lb.Properties.FrontendIPConfigurations {
				if fe == nil || fe.Properties == nil || fe.Properties.PublicIPAddress == nil {
					continue
				}
				if id := deref(fe.Properties.PublicIPAddress.ID); id != "" {
					converted.PublicIPAddresses = append(converted.PublicIPAddresses, id)
				}
			}
			for _, rule := range lb.Properties.LoadBalancingRules {
				if rule == nil || rule.Properties == nil {
					continue
				}
				if rule.Properties.FrontendPort != nil {
					converted.FrontendPorts = append(converted.FrontendPorts, *rule.Properties.FrontendPort)
				}
				if rule.Properties.Protocol != nil {
					converted.Protocols = append(converted.Protocols, string(*rule.Properties.Protocol))
				}
			}
			out = append(out, converted)
		}
	}
	return out, nil
}

func (c *networkClient) ApplicationGateways(ctx context.Context) ([]scan.ApplicationGateway, error) {
	out := make([]scan.ApplicationGateway, 0)
	pager := c.factory.NewApplicationGatewaysClient().NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing application gateways: %w", err)
		}
		for _, agw := range page.Value {
			if agw == nil || agw.Properties == nil {
				continue
			}
			converted := scan.ApplicationGateway{
				ID:   deref(agw.ID),
				Name: deref(agw.Name),
			}
			for _, fe := range agw.Properties.FrontendIPConfigurations {
				if fe == nil || fe.Properties == nil || fe.Properties.PublicIPAddress == nil {
					continue
				}
				if id := deref(fe.Properties.PublicIPAddress.ID); id != "" {
					converted.PublicIPAddresses = append(converted.PublicIPAddresses, id)
				}
			}
			for _, fp := range agw.Properties.FrontendPorts {
				if fp != nil && fp.Properties != nil && fp.Properties.Port != nil {
					converted.FrontendPorts = append(converted.FrontendPorts, *fp.Properties.Port)
				}
			}
			for _, listener := range agw.Properties.HTTPListeners {
				if listener != nil && listener.Properties != nil && listener.Properties.Protocol != nil {
					converted.Protocols = append(converted.Protocols, string(*listener.Properties.Protocol))
				}
			}
			out = append(out, converted)
		}
	}
	return out, nil
}
