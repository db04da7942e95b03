package sqlinline

const QInsertDonation = `--sql 4f2a9c1e-8d34-4b7a-9e02-6c1f5a8b3d90
insert into donations(id, campaign_id, source, external_ref, gross, fee, net, donor_name, donor_email, status, received_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, $4::bigint, $5::bigint, $6::bigint, $7::text, $8::text, 'applied', now())
returning id;
`

const QListCampaignDonations = `--sql b7e15d02-3c48-49fa-8b61-2f90ac47e513
select id, campaign_id, source, external_ref, gross, fee, net, donor_name, status, received_at
from donations
where campaign_id = $1::uuid
order by received_at desc
limit $2::int;
`
