package sqlinline

const QApplyCampaignAggregates = `--sql 1d6b8f4a-92e7-4c05-ae38-7b54d10c96f2
update campaigns
set gross_raised = gross_raised + $2::bigint,
    net_raised = net_raised + $3::bigint,
    fee_collected = fee_collected + $4::bigint,
    updated_at = now()
where id = $1::uuid;
`

const QGetCampaign = `--sql 83c07a5d-1fb9-4e26-b4d8-05a9e672c1f4
select id, title, chain_id, contract_address, contract_version, goal_amount,
       gross_raised, net_raised, fee_collected, status, immediate_payout_enabled,
       created_at, updated_at
from campaigns
where id = $1::uuid;
`
