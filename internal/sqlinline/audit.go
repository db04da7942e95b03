package sqlinline

const QInsertAuditRecord = `--sql f58c1d2a-36b9-4e70-a4d5-81b620c79e34
insert into audit_records(id, actor_id, operation, operation_id, params, status, tx_hash, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, coalesce($4::jsonb, '{}'::jsonb), $5::text, $6::text, now())
returning id;
`

const QListAuditRecords = `--sql 6e2b94f7-cd05-4a81-b3e9-72d4a1f85c06
select id, actor_id, operation, operation_id, params, status, tx_hash, created_at
from audit_records
where ($1::text = '' or actor_id = $1::text)
  and ($2::text = '' or operation = $2::text)
  and ($3::text = '' or status = $3::text)
order by created_at desc
limit $4::int;
`
